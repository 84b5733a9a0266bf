package service

import (
	"context"
	"errors"
	"time"

	"insurance_intake_backend/internal/events"
	"insurance_intake_backend/internal/intake"
	"insurance_intake_backend/platform/ai/openaichat"
	"insurance_intake_backend/platform/apperr"
	"insurance_intake_backend/platform/logger"
)

// ModelClient produces the assistant's next message for a conversation.
type ModelClient interface {
	Complete(ctx context.Context, messages []openaichat.Message, tools []openaichat.Tool) (openaichat.Message, error)
}

// ToolDispatcher executes the tools the model may call during a turn.
// Execute always returns a textual result for the model; failures come back
// as readable error text, never as a Go error.
type ToolDispatcher interface {
	Tools() []openaichat.Tool
	Execute(ctx context.Context, threadID string, sess *intake.Session, call openaichat.ToolCall) string
}

// Config bounds a conversation turn.
type Config struct {
	MaxToolRounds int
	TurnTimeout   time.Duration
}

// Service runs conversation turns: it feeds the thread history to the model,
// dispatches requested tool calls and repeats until the model produces a
// plain reply or a bound is hit.
type Service struct {
	store      *ThreadStore
	model      ModelClient
	dispatcher ToolDispatcher
	bus        events.Bus
	log        *logger.Logger
	cfg        Config
}

// NewService wires the chat service.
func NewService(store *ThreadStore, model ModelClient, dispatcher ToolDispatcher, bus events.Bus, log *logger.Logger, cfg Config) *Service {
	return &Service{
		store:      store,
		model:      model,
		dispatcher: dispatcher,
		bus:        bus,
		log:        log,
		cfg:        cfg,
	}
}

// TurnResult is the outcome of a completed conversation turn.
type TurnResult struct {
	Response  string
	ThreadID  string
	Timestamp time.Time
}

// HandleTurn appends the user's query to the thread and drives the model
// and tool loop to a final reply. Turns on the same thread are serialized;
// the whole turn runs under the configured deadline.
func (s *Service) HandleTurn(ctx context.Context, threadID, query string) (*TurnResult, error) {
	const op = "chat.Service.HandleTurn"

	thread := s.store.GetOrCreate(threadID)
	thread.mu.Lock()
	defer thread.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.TurnTimeout)
	defer cancel()

	thread.lastActive = time.Now()
	thread.messages = append(thread.messages, openaichat.Message{
		Role:    openaichat.RoleUser,
		Content: query,
	})

	tools := s.dispatcher.Tools()
	for round := 0; ; round++ {
		reply, err := s.model.Complete(ctx, thread.messages, tools)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, apperr.Wrap(apperr.KindTimeout, "the conversation turn timed out", err).WithOp(op)
			}
			return nil, err
		}

		if len(reply.ToolCalls) == 0 {
			thread.messages = append(thread.messages, openaichat.Message{
				Role:    openaichat.RoleAssistant,
				Content: reply.Content,
			})
			thread.lastActive = time.Now()
			return &TurnResult{
				Response:  reply.Content,
				ThreadID:  threadID,
				Timestamp: time.Now(),
			}, nil
		}

		if round >= s.cfg.MaxToolRounds {
			s.log.Error("tool round limit reached", "thread_id", threadID, "rounds", round)
			return nil, apperr.LoopExceeded("the assistant could not finish within the allowed number of tool rounds").WithOp(op)
		}

		thread.messages = append(thread.messages, reply)
		for _, call := range reply.ToolCalls {
			result := s.runTool(ctx, threadID, thread.session, call)
			thread.messages = append(thread.messages, openaichat.Message{
				Role:       openaichat.RoleTool,
				ToolCallID: call.ID,
				Name:       call.Name,
				Content:    result,
			})
		}
	}
}

// runTool dispatches one tool call. A panicking handler is reported to the
// model as an error result instead of taking down the turn.
func (s *Service) runTool(ctx context.Context, threadID string, sess *intake.Session, call openaichat.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool handler panicked", "thread_id", threadID, "tool", call.Name, "panic", r)
			result = "Error executing " + call.Name + ": internal error. Please try again."
		}
	}()
	s.log.ToolCall(threadID, call.Name, call.ID, nil)
	return s.dispatcher.Execute(ctx, threadID, sess, call)
}

// History is a thread's full transcript.
type History struct {
	ThreadID     string
	MessageCount int
	Messages     []openaichat.Message
}

// GetHistory returns the transcript for a thread.
func (s *Service) GetHistory(threadID string) (*History, error) {
	const op = "chat.Service.GetHistory"

	thread := s.store.Get(threadID)
	if thread == nil {
		return nil, apperr.NotFound("thread "+threadID+" not found").WithOp(op)
	}

	thread.mu.Lock()
	messages := make([]openaichat.Message, len(thread.messages))
	copy(messages, thread.messages)
	thread.mu.Unlock()

	return &History{
		ThreadID:     threadID,
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

// DeleteThread removes a thread and its intake session. Deleting a missing
// thread succeeds silently.
func (s *Service) DeleteThread(ctx context.Context, threadID string) {
	if s.store.Delete(threadID) {
		s.bus.Publish(ctx, events.ThreadDeleted{
			BaseEvent: events.NewBaseEvent(),
			ThreadID:  threadID,
		})
		s.log.Info("conversation thread deleted", "thread_id", threadID)
	}
}

// ActiveThreads reports the number of live conversations.
func (s *Service) ActiveThreads() int { return s.store.Count() }
