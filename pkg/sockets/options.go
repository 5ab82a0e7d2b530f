package sockets

import "time"

func WithPingInterval(d time.Duration) func(*Hub) {
	return func(h *Hub) {
		h.pingInterval = d
	}
}

func WithPingMsg(msg []byte) func(*Hub) {
	return func(h *Hub) {
		h.pingMsg = msg
	}
}

func WithWriteTimeout(d time.Duration) func(*Hub) {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

// WithSendBuffer sets how many messages a client may lag behind before it is dropped.
func WithSendBuffer(size int) func(*Hub) {
	return func(h *Hub) {
		h.sendBuffer = size
	}
}

func OnConnected(f func(remote string)) func(*Hub) {
	return func(h *Hub) {
		h.onConnected = f
	}
}
