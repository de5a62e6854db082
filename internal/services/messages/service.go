package messages

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivanmatek/ember/internal/domain/model"
	"github.com/ivanmatek/ember/internal/pkg/validate"
	pgrepo "github.com/ivanmatek/ember/internal/repo/postgres"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrMatchNotFound  = errors.New("match not found")
	ErrNotParticipant = errors.New("user is not a participant of the match")

	// ErrMatchClosed covers both deactivated matches and active records past
	// their expiry that the sweeper has not caught up with yet.
	ErrMatchClosed = errors.New("match is closed")
)

const maxContentLength = 2000

type MatchStore interface {
	GetByID(ctx context.Context, id string) (model.Match, error)
}

type MessageStore interface {
	Create(ctx context.Context, matchID, senderID, content string) (model.Message, error)
	ListByMatch(ctx context.Context, matchID string, limit int) ([]model.Message, error)
}

type Publisher interface {
	Publish(msg model.Message)
}

type Service struct {
	matches  MatchStore
	messages MessageStore
	pub      Publisher
	now      func() time.Time
}

func NewService(matches MatchStore, messages MessageStore, pub Publisher) *Service {
	return &Service{
		matches:  matches,
		messages: messages,
		pub:      pub,
		now:      time.Now,
	}
}

// Send persists a message and fans it out to stream subscribers. Only a
// participant of a live, unexpired match may send.
func (s *Service) Send(ctx context.Context, matchID, senderID, content string) (model.Message, error) {
	if matchID == "" || senderID == "" {
		return model.Message{}, fmt.Errorf("match id and sender id are required: %w", ErrValidation)
	}
	if !validate.Required(content) {
		return model.Message{}, fmt.Errorf("message content is required: %w", ErrValidation)
	}
	content = strings.TrimSpace(content)
	if len(content) > maxContentLength {
		return model.Message{}, fmt.Errorf("message content exceeds %d bytes: %w", maxContentLength, ErrValidation)
	}

	match, err := s.loadOpenMatch(ctx, matchID, senderID)
	if err != nil {
		return model.Message{}, err
	}

	msg, err := s.messages.Create(ctx, match.ID, senderID, content)
	if err != nil {
		return model.Message{}, fmt.Errorf("save message: %w", err)
	}

	if s.pub != nil {
		s.pub.Publish(msg)
	}
	return msg, nil
}

// List returns the match history oldest-first. Expired matches are still
// readable: closing a chat stops writes, not reads.
func (s *Service) List(ctx context.Context, matchID, userID string, limit int) ([]model.Message, error) {
	if matchID == "" || userID == "" {
		return nil, fmt.Errorf("match id and user id are required: %w", ErrValidation)
	}

	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}

	items, err := s.messages.ListByMatch(ctx, matchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return items, nil
}

// Authorize checks that userID may attach a live stream to matchID. Streams
// follow the same rules as sending.
func (s *Service) Authorize(ctx context.Context, matchID, userID string) error {
	if matchID == "" || userID == "" {
		return fmt.Errorf("match id and user id are required: %w", ErrValidation)
	}
	_, err := s.loadOpenMatch(ctx, matchID, userID)
	return err
}

func (s *Service) loadOpenMatch(ctx context.Context, matchID, userID string) (model.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if !match.HasParticipant(userID) {
		return model.Match{}, ErrNotParticipant
	}
	if !match.Active || match.ExpiredAt(s.now()) {
		return model.Match{}, ErrMatchClosed
	}
	return match, nil
}

func (s *Service) getMatch(ctx context.Context, matchID string) (model.Match, error) {
	if s.matches == nil || s.messages == nil {
		return model.Match{}, fmt.Errorf("message dependencies are not configured")
	}

	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrMatchNotFound) {
			return model.Match{}, ErrMatchNotFound
		}
		return model.Match{}, fmt.Errorf("load match: %w", err)
	}
	return match, nil
}
