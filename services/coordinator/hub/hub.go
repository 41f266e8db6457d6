// Copyright (C) 2025 SwarmCraft contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package hub tracks live observer connections per session and fans
// broadcast payloads out to them.
//
// Delivery is best-effort and independent per observer: each connection
// owns a buffered outbound channel drained by its own write pump, so a
// slow or dead observer never blocks another observer and never blocks
// the state-mutation path. A connection whose buffer fills or whose
// write misses the deadline is dropped and marked dead.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Socket is the subset of *websocket.Conn the hub writes through.
// Narrowing to an interface keeps the write pump testable without a
// network.
type Socket interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// textMessage mirrors websocket.TextMessage without importing the
// websocket package here.
const textMessage = 1

// Config tunes hub delivery.
type Config struct {
	// SendBuffer is the per-connection outbound queue length. A full
	// queue drops the connection.
	SendBuffer int

	// WriteTimeout bounds a single network write. A write that blocks
	// longer marks the connection dead.
	WriteTimeout time.Duration
}

// DefaultConfig returns delivery defaults suitable for interactive
// sessions.
func DefaultConfig() Config {
	return Config{SendBuffer: 32, WriteTimeout: 5 * time.Second}
}

// Conn is one registered observer connection.
type Conn struct {
	ParticipantID string

	sock Socket
	send chan []byte
	once sync.Once
	done chan struct{}
}

// Done is closed when the connection's write pump has exited.
func (c *Conn) Done() <-chan struct{} { return c.done }

func (c *Conn) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.sock.Close()
	})
}

// Hub is the per-session observer registry.
type Hub struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]map[string]*Conn
}

// New constructs a hub.
func New(cfg Config, logger *slog.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]map[string]*Conn),
	}
}

// Register adds an observer for the session and starts its write pump.
// A previous connection for the same participant is dropped first; the
// newest connection wins.
func (h *Hub) Register(code, participantID string, sock Socket) *Conn {
	conn := &Conn{
		ParticipantID: participantID,
		sock:          sock,
		send:          make(chan []byte, h.cfg.SendBuffer),
		done:          make(chan struct{}),
	}

	h.mu.Lock()
	observers, ok := h.sessions[code]
	if !ok {
		observers = make(map[string]*Conn)
		h.sessions[code] = observers
	}
	if prev, ok := observers[participantID]; ok {
		prev.close()
	}
	observers[participantID] = conn
	h.mu.Unlock()

	go h.writePump(code, conn)
	h.logger.Info("observer connected", "session", code, "participant", participantID)
	return conn
}

// Unregister removes an observer connection and closes it. Removal is
// keyed by connection identity, not participant ID: if the participant
// already reconnected, the registry points at a newer *Conn and is left
// alone, so a failing stale connection never evicts its replacement.
func (h *Hub) Unregister(code string, conn *Conn) {
	h.mu.Lock()
	removed := false
	if observers, ok := h.sessions[code]; ok {
		if observers[conn.ParticipantID] == conn {
			delete(observers, conn.ParticipantID)
			removed = true
			if len(observers) == 0 {
				delete(h.sessions, code)
			}
		}
	}
	h.mu.Unlock()

	conn.close()
	if removed {
		h.logger.Info("observer disconnected", "session", code, "participant", conn.ParticipantID)
	}
}

// DropSession removes every observer of a session, e.g. when the
// session completes or expires.
func (h *Hub) DropSession(code string) {
	h.mu.Lock()
	observers := h.sessions[code]
	delete(h.sessions, code)
	h.mu.Unlock()

	for _, conn := range observers {
		conn.close()
	}
}

// ObserverCount returns the number of live observers for a session.
func (h *Hub) ObserverCount(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[code])
}

// Sessions returns the codes of all sessions with at least one
// observer.
func (h *Hub) Sessions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.sessions))
	for code := range h.sessions {
		out = append(out, code)
	}
	return out
}

// Broadcast marshals payload once and queues it to every observer of
// the session. It never blocks: an observer whose queue is full is
// dropped. Fire-and-forget by contract — delivery failures are logged,
// never surfaced to the mutating caller.
func (h *Hub) Broadcast(code string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast payload", "session", code, "error", err)
		return
	}

	h.mu.RLock()
	observers := make([]*Conn, 0, len(h.sessions[code]))
	for _, conn := range h.sessions[code] {
		observers = append(observers, conn)
	}
	h.mu.RUnlock()

	for _, conn := range observers {
		select {
		case conn.send <- data:
			broadcastsQueued.Inc()
		default:
			broadcastsDropped.Inc()
			h.logger.Warn("observer send queue full, dropping connection",
				"session", code, "participant", conn.ParticipantID)
			h.Unregister(code, conn)
		}
	}
}

// Send queues a payload to a single observer, with the same
// non-blocking discipline as Broadcast.
func (h *Hub) Send(code, participantID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode payload", "session", code, "error", err)
		return
	}

	h.mu.RLock()
	conn := h.sessions[code][participantID]
	h.mu.RUnlock()
	if conn == nil {
		return
	}

	select {
	case conn.send <- data:
	default:
		broadcastsDropped.Inc()
		h.logger.Warn("observer send queue full, dropping connection",
			"session", code, "participant", participantID)
		h.Unregister(code, conn)
	}
}

// writePump drains the connection's queue onto the socket. Any write
// error or missed deadline ends the pump and unregisters the
// connection.
func (h *Hub) writePump(code string, conn *Conn) {
	for {
		select {
		case <-conn.done:
			return
		case data := <-conn.send:
			_ = conn.sock.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := conn.sock.WriteMessage(textMessage, data); err != nil {
				h.logger.Warn("observer write failed, dropping connection",
					"session", code, "participant", conn.ParticipantID, "error", err)
				h.Unregister(code, conn)
				return
			}
		}
	}
}
