package relay

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/transport"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Browser clients are served from other origins
	},
}

// gesturePayload accepts either shape of update_gesture data.
type gesturePayload struct {
	Command   *string `json:"command"`
	RightHand string  `json:"right_hand"`
	LeftHand  string  `json:"left_hand"`
}

// Handler returns the gin engine serving the relay API and the static site.
func (r *Relay) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if r.staticDir != "" {
		engine.Use(static.Serve("/", static.LocalFile(r.staticDir, false)))
	}

	start := time.Now()
	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(start).String(),
			"connected": r.connected(),
		})
	})
	engine.GET("/api/servos", func(c *gin.Context) {
		c.JSON(http.StatusOK, r.servos.Angles())
	})
	engine.POST("/api/gesture", r.handleGesture)
	engine.GET("/ws", r.handleWebSocket)

	return engine
}

func (r *Relay) connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.actuator != nil
}

// handleGesture serves POST /api/gesture with either a command or a pair body.
func (r *Relay) handleGesture(c *gin.Context) {
	var p gesturePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, transport.Response{Status: transport.StatusError, Message: "invalid JSON body"})
		return
	}

	var (
		resp transport.Response
		err  error
	)
	if p.Command != nil {
		resp, err = r.HandleCommand(*p.Command)
	} else {
		_, resp, err = r.HandlePair(transport.PairPayload{RightHand: p.RightHand, LeftHand: p.LeftHand})
	}

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNoActuator) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, transport.Response{Status: transport.StatusError, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleWebSocket serves one websocket client until it disconnects.
func (r *Relay) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	addr := c.ClientIP()
	r.console.Connected(addr)
	defer r.console.Disconnected(addr)

	for {
		var env transport.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Event != transport.EventUpdateGesture {
			continue
		}

		for _, reply := range r.dispatch(env.Data) {
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
	}
}

// dispatch handles one update_gesture payload and returns the replies to send back.
func (r *Relay) dispatch(data json.RawMessage) []transport.Envelope {
	var p gesturePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return []transport.Envelope{errorEnvelope(err)}
	}

	var replies []transport.Envelope

	var (
		resp transport.Response
		err  error
	)
	if p.Command != nil {
		resp, err = r.HandleCommand(*p.Command)
	} else {
		var angles transport.ServoAngles
		angles, resp, err = r.HandlePair(transport.PairPayload{RightHand: p.RightHand, LeftHand: p.LeftHand})
		if env, encErr := transport.NewEnvelope(transport.EventServoUpdate, angles); encErr == nil {
			replies = append(replies, env)
		}
	}

	if err != nil {
		return append(replies, errorEnvelope(err))
	}
	if env, encErr := transport.NewEnvelope(transport.EventUARTResponse, resp); encErr == nil {
		replies = append(replies, env)
	}
	return replies
}

func errorEnvelope(err error) transport.Envelope {
	env, _ := transport.NewEnvelope(transport.EventError, transport.ErrorPayload{Message: err.Error()})
	return env
}
