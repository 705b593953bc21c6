// Package testutil provides shared test doubles and fixtures for engine tests.
package testutil

import (
	"context"
	"errors"
	"sync"

	"channelpost/internal/gateway"
	"channelpost/internal/models"
)

// ErrGateway is returned by the fake for any non-ok result.
var ErrGateway = errors.New("gateway rejected")

// Edit is one recorded EditCaption call.
type Edit struct {
	PostID  int64
	Caption string
	Layout  models.Layout
}

// Message is one recorded private message or menu.
type Message struct {
	ChatID int64
	Text   string
	Layout models.Layout
}

// GatewayFake records every call and answers with configurable results.
// It is safe for concurrent use.
type GatewayFake struct {
	mu sync.Mutex

	EditResult   gateway.Result
	PinResult    gateway.Result
	SendResult   gateway.Result
	DeleteResult gateway.Result

	Edits     []Edit
	Pins      []int64
	Messages  []Message
	Menus     []Message
	Deletes   []int64
	Callbacks []string
	Toasts    []string
}

// NewGatewayFake returns a fake that answers ok to everything.
func NewGatewayFake() *GatewayFake {
	return &GatewayFake{
		EditResult:   gateway.ResultOK,
		PinResult:    gateway.ResultOK,
		SendResult:   gateway.ResultOK,
		DeleteResult: gateway.ResultOK,
	}
}

func reply(result gateway.Result) (gateway.Result, error) {
	if result == gateway.ResultOK {
		return result, nil
	}
	return result, ErrGateway
}

func (f *GatewayFake) EditCaption(_ context.Context, postID int64, caption string, layout models.Layout) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Edits = append(f.Edits, Edit{PostID: postID, Caption: caption, Layout: layout})
	return reply(f.EditResult)
}

func (f *GatewayFake) PinMessage(_ context.Context, postID int64) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pins = append(f.Pins, postID)
	return reply(f.PinResult)
}

func (f *GatewayFake) SendPrivateMessage(_ context.Context, userID int64, text string) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Messages = append(f.Messages, Message{ChatID: userID, Text: text})
	return reply(f.SendResult)
}

func (f *GatewayFake) DeleteMessage(_ context.Context, postID int64) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deletes = append(f.Deletes, postID)
	return reply(f.DeleteResult)
}

func (f *GatewayFake) SendMenu(_ context.Context, chatID int64, text string, layout models.Layout) (gateway.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Menus = append(f.Menus, Message{ChatID: chatID, Text: text, Layout: layout})
	return gateway.ResultOK, nil
}

func (f *GatewayFake) AnswerCallback(_ context.Context, callbackID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Callbacks = append(f.Callbacks, callbackID)
	f.Toasts = append(f.Toasts, text)
	return nil
}

// EditCount returns the number of recorded edits.
func (f *GatewayFake) EditCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Edits)
}

// LastEdit returns the most recent edit, or a zero Edit.
func (f *GatewayFake) LastEdit() Edit {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Edits) == 0 {
		return Edit{}
	}
	return f.Edits[len(f.Edits)-1]
}

// MessagesTo returns the private messages sent to chatID.
func (f *GatewayFake) MessagesTo(chatID int64) []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Message
	for _, m := range f.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// PinCount returns the number of PinMessage calls.
func (f *GatewayFake) PinCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Pins)
}

// LastMenu returns the most recent menu sent to chatID, or a zero Message.
func (f *GatewayFake) LastMenu(chatID int64) Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.Menus) - 1; i >= 0; i-- {
		if f.Menus[i].ChatID == chatID {
			return f.Menus[i]
		}
	}
	return Message{}
}
