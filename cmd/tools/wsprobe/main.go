package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// wsprobe is a manual test client for the relay: it registers, joins a
// session, optionally sends one message, and prints everything it
// receives until the timeout expires.
func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] no .env file, using system environment: %v", err)
	}

	url := flag.String("url", "ws://localhost:3000/ws", "relay websocket URL")
	name := flag.String("name", "probe", "display name to register")
	role := flag.String("role", "interviewer", "role to register: interviewer or candidate")
	session := flag.String("session", "", "session id to join (empty generates one)")
	say := flag.String("say", "", "send a final transcription with this text")
	ask := flag.String("ask", "", "send a question with this text")
	aiType := flag.String("ai", "", "send an ai-request of this type")
	aiData := flag.String("data", "{}", "JSON payload for the ai-request")
	timeout := flag.Duration("timeout", 15*time.Second, "how long to listen before exiting")

	flag.Parse()

	sessionID := *session
	if sessionID == "" {
		sessionID = fmt.Sprintf("probe-%d", time.Now().UnixNano())
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		log.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	send(conn, map[string]any{"type": "register", "name": *name, "role": *role})
	send(conn, map[string]any{"type": "join-session", "sessionId": sessionID})

	if *say != "" {
		send(conn, map[string]any{
			"type": "transcription", "text": *say,
			"confidence": 1.0, "isFinal": true, "language": "en",
		})
	}
	if *ask != "" {
		send(conn, map[string]any{"type": "question", "question": *ask})
	}
	if *aiType != "" {
		var data json.RawMessage
		if err := json.Unmarshal([]byte(*aiData), &data); err != nil {
			log.Fatalf("invalid -data JSON: %v", err)
		}
		send(conn, map[string]any{"type": "ai-request", "requestType": *aiType, "data": data})
	}

	deadline := time.Now().Add(*timeout)
	conn.SetReadDeadline(deadline)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if time.Now().After(deadline) {
				log.Println("probe finished")
				return
			}
			log.Fatalf("read failed: %v", err)
		}
		log.Printf("<- %s", raw)
	}
}

func send(conn *websocket.Conn, msg map[string]any) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Fatalf("write failed: %v", err)
	}
	log.Printf("-> %s", mustJSON(msg))
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
