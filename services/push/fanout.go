package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"puckline/database"
	"puckline/models"

	"go.uber.org/zap"
)

// AnonAccessHint explains an access-control failure while reading tokens.
const AnonAccessHint = "anonymous-level credentials cannot see other users' notification tokens; " +
	"run the sender with service-level credentials (DATABASE_URL)"

// TokenSource is what the sender needs from the token store.
type TokenSource interface {
	ListAll(ctx context.Context) ([]models.StoredToken, error)
	ListByUsers(ctx context.Context, userIDs []string) ([]models.StoredToken, error)
	DeleteByID(ctx context.Context, id string) error
}

// Request describes one fan-out run.
type Request struct {
	Payload models.NotificationPayload
	// UserIDs restricts the run to these users; empty means everyone.
	UserIDs []string
	// PruneGone deletes tokens the push service reports as gone.
	PruneGone bool
}

// RecipientResult is the outcome for one stored token.
type RecipientResult struct {
	Index      int    `json:"index"`
	TokenID    string `json:"token_id"`
	UserID     string `json:"user_id"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Gone       bool   `json:"gone,omitempty"`
	Pruned     bool   `json:"pruned,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Report aggregates a fan-out run for operators.
type Report struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []RecipientResult `json:"results"`
}

// FanoutSender delivers one payload independently to many stored tokens.
type FanoutSender struct {
	tokens      TokenSource
	transport   Transport
	logger      *zap.Logger
	concurrency int
}

func NewFanoutSender(tokens TokenSource, transport Transport, logger *zap.Logger, concurrency int) *FanoutSender {
	if concurrency <= 0 {
		concurrency = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FanoutSender{
		tokens:      tokens,
		transport:   transport,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Send reads the target tokens and pushes to each one. A failing recipient
// never stops the others; the returned error only covers preconditions and
// reading the token set.
func (s *FanoutSender) Send(ctx context.Context, req Request) (*Report, error) {
	if s.transport == nil {
		return nil, ErrMissingCredentials
	}

	payload, err := EncodePayload(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("FanoutSender.Send: encode payload: %w", err)
	}

	tokens, err := s.readTokens(ctx, req.UserIDs)
	if err != nil {
		if errors.Is(err, database.ErrAccessDenied) {
			s.logger.Error("Reading notification tokens was denied", zap.Error(err), zap.String("hint", AnonAccessHint))
			return nil, fmt.Errorf("FanoutSender.Send: %w (hint: %s)", err, AnonAccessHint)
		}
		s.logger.Error("Failed to read notification tokens", zap.Error(err))
		return nil, fmt.Errorf("FanoutSender.Send: %w", err)
	}

	report := &Report{Total: len(tokens), Results: make([]RecipientResult, len(tokens))}
	if len(tokens) == 0 {
		s.logger.Info("No notification tokens found, nothing to send")
		return report, nil
	}

	FanoutsTotal.Inc()
	s.logger.Info("Starting push fan-out", zap.Int("recipients", len(tokens)))

	semaphore := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, token models.StoredToken) {
			defer wg.Done()
			defer func() { <-semaphore }()
			report.Results[i] = s.sendOne(ctx, i+1, token, payload, req.PruneGone)
		}(i, token)
	}
	wg.Wait()

	for _, r := range report.Results {
		if r.Success {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	s.logger.Info("Push fan-out finished",
		zap.Int("recipients", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

func (s *FanoutSender) readTokens(ctx context.Context, userIDs []string) ([]models.StoredToken, error) {
	if len(userIDs) > 0 {
		return s.tokens.ListByUsers(ctx, userIDs)
	}
	return s.tokens.ListAll(ctx)
}

func (s *FanoutSender) sendOne(ctx context.Context, index int, token models.StoredToken, payload []byte, prune bool) (result RecipientResult) {
	result = RecipientResult{Index: index, TokenID: token.ID, UserID: token.UserID}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("panic recovered: %v", r)
			s.logger.Error("Push send panicked", zap.Int("recipient", index), zap.Any("panicValue", r))
		}
	}()

	delivery, err := s.transport.Send(ctx, token.Token, payload)
	if delivery != nil {
		result.StatusCode = delivery.StatusCode
		result.Gone = delivery.Gone
	}
	if err != nil {
		SendsTotal.WithLabelValues("failure").Inc()
		result.Error = err.Error()
		s.logger.Error("Push send failed",
			zap.Int("recipient", index),
			zap.String("userID", token.UserID),
			zap.Int("statusCode", result.StatusCode),
			zap.Error(err),
		)
		if result.Gone {
			GoneTotal.Inc()
			if prune {
				result.Pruned = s.prune(ctx, index, token)
			}
		}
		return result
	}

	SendsTotal.WithLabelValues("success").Inc()
	result.Success = true
	s.logger.Info("Push sent",
		zap.Int("recipient", index),
		zap.String("userID", token.UserID),
		zap.Int("statusCode", result.StatusCode),
	)
	return result
}

func (s *FanoutSender) prune(ctx context.Context, index int, token models.StoredToken) bool {
	if err := s.tokens.DeleteByID(ctx, token.ID); err != nil {
		s.logger.Warn("Failed to prune gone token", zap.Int("recipient", index), zap.Error(err))
		return false
	}
	s.logger.Info("Pruned gone token", zap.Int("recipient", index), zap.String("tokenID", token.ID))
	return true
}
