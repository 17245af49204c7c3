// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the built-in test page.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler upgrades GET requests and attaches the connection to
// the hub. The first message a client sends is its identity.
func WebSocketHandler(hub *Hub, upgrader *websocket.Upgrader, readLimit int64, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("WebSocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}
		conn.SetReadLimit(readLimit)

		if err := hub.Attach(NewWebSocketConn(conn, r.RemoteAddr)); err != nil {
			logger.Info("Hub closed; dropping WebSocket connection", "addr", r.RemoteAddr)
			_ = conn.Close()
		}
	}
}

// HealthHandler reports that the relay is up and how many clients are registered.
func HealthHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprintf(w, "GoChat server is running! clients=%d connections=%d state=%s", hub.ClientCount(), hub.Connections(), hub.State())
	}
}

// TestPageHandler serves an HTML page that joins the room over the
// WebSocket gateway: it sends the chosen name first, then chat lines.
func TestPageHandler(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testPage(w, r, logger)
	}
}

func testPage(w http.ResponseWriter, _ *http.Request, logger *slog.Logger) {
	w.Header().Set("Content-Type", "text/html")
	html := `<!DOCTYPE html>
<html>
<head>
    <title>GoChat Relay Test</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #messages { 
            border: 1px solid #ccc; 
            height: 300px; 
            padding: 10px; 
            overflow-y: scroll; 
            margin: 10px 0;
            background-color: #f9f9f9;
        }
        input[type="text"] { 
            width: 300px; 
            padding: 5px; 
            margin-right: 10px;
        }
        button { 
            padding: 5px 15px; 
            background-color: #007cba; 
            color: white; 
            border: none; 
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status { 
            margin: 10px 0; 
            padding: 5px; 
            border-radius: 3px;
        }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
    </style>
</head>
<body>
    <h1>GoChat Relay Test</h1>
    
    <div id="status" class="status disconnected">Disconnected</div>
    
    <div>
        <input type="text" id="nameInput" placeholder="Your name...">
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
        <button id="connectButton" onclick="toggleConnection()">Connect</button>
    </div>
    
    <div id="messages"></div>

    <script>
        let ws = null;
        const messagesDiv = document.getElementById('messages');
        const nameInput = document.getElementById('nameInput');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const connectButton = document.getElementById('connectButton');
        const statusDiv = document.getElementById('status');

        function addMessage(message, type = 'info') {
            const messageElement = document.createElement('div');
            messageElement.style.margin = '5px 0';
            messageElement.style.padding = '3px';
            
            if (type === 'sent') {
                messageElement.style.color = 'blue';
            } else if (type === 'notice') {
                messageElement.style.color = 'darkgoldenrod';
            } else if (type === 'received') {
                messageElement.style.color = 'green';
            } else {
                messageElement.style.color = 'gray';
                messageElement.style.fontStyle = 'italic';
            }
            messageElement.textContent = message;
            
            messagesDiv.appendChild(messageElement);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function updateStatus(connected) {
            if (connected) {
                statusDiv.textContent = 'Connected';
                statusDiv.className = 'status connected';
                messageInput.disabled = false;
                nameInput.disabled = true;
                sendButton.disabled = false;
                connectButton.textContent = 'Disconnect';
            } else {
                statusDiv.textContent = 'Disconnected';
                statusDiv.className = 'status disconnected';
                messageInput.disabled = true;
                nameInput.disabled = false;
                sendButton.disabled = true;
                connectButton.textContent = 'Connect';
            }
        }

        function connect() {
            const name = nameInput.value.trim();
            if (!name) {
                addMessage('Choose a name first');
                return;
            }
            ws = new WebSocket('ws://' + window.location.host + '/ws');
            
            ws.onopen = function(event) {
                ws.send(name);
                addMessage('Connected to GoChat server as ' + name);
                updateStatus(true);
            };
            
            ws.onmessage = function(event) {
                const notice = event.data.startsWith('>>> ');
                addMessage(event.data, notice ? 'notice' : 'received');
            };
            
            ws.onclose = function(event) {
                addMessage('Connection closed');
                updateStatus(false);
                ws = null;
            };
            
            ws.onerror = function(error) {
                addMessage('Connection error: ' + error);
                updateStatus(false);
            };
        }

        function disconnect() {
            if (ws) {
                ws.close();
            }
        }

        function toggleConnection() {
            if (ws && ws.readyState === WebSocket.OPEN) {
                disconnect();
            } else {
                connect();
            }
        }

        function sendMessage() {
            const message = messageInput.value.trim();
            if (message && ws && ws.readyState === WebSocket.OPEN) {
                const line = nameInput.value.trim() + ': ' + message;
                ws.send(line);
                addMessage(line, 'sent');
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
	if _, err := fmt.Fprint(w, html); err != nil {
		logger.Warn("Error writing HTML response", "error", err)
	}
}
