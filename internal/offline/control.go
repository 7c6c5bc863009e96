package offline

import (
	"context"
	"time"

	"github.com/dom/jobtracker/internal/websocket"
)

const messageTimeout = 30 * time.Second

// MessageHandler routes page messages received over the websocket hub.
func MessageHandler(registration *Registration) websocket.MessageHandler {
	return func(client *websocket.Client, msg *websocket.Message) {
		switch msg.Type {
		case websocket.MessageTypeSkipWaiting:
			ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
			defer cancel()
			if err := registration.HandleMessage(ctx, MessageSkipWaiting); err != nil {
				client.SendError("ACTIVATION_FAILED", err.Error())
			}
		case websocket.MessageTypeGetState:
			sendState(client, registration)
		default:
			client.SendError("UNKNOWN_MESSAGE", "Unknown message type: "+string(msg.Type))
		}
	}
}

// ConnectHandler sends the current worker state to every new page.
func ConnectHandler(registration *Registration) func(*websocket.Client) {
	return func(client *websocket.Client) {
		sendState(client, registration)
	}
}

func sendState(client *websocket.Client, registration *Registration) {
	msg, err := websocket.NewMessage(websocket.MessageTypeWorkerState, registration.State())
	if err != nil {
		return
	}
	client.Send(msg)
}
