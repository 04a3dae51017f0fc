package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/jyotish-atlas/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "jyotish.analysis.completed"

// AnalysisCompleted is published after a successful analysis.
type AnalysisCompleted struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Modules     []domain.ModuleID `json:"modules"`
	ReportPath  string            `json:"report_path,omitempty"`
	CompletedAt time.Time         `json:"completed_at"`
}

// NewAnalysisCompleted builds the event for a finished response.
func NewAnalysisCompleted(resp domain.AnalysisResponse, at time.Time) AnalysisCompleted {
	modules := make([]domain.ModuleID, 0, len(resp.Results))
	for _, r := range resp.Results {
		modules = append(modules, r.Module)
	}
	return AnalysisCompleted{
		ID:          uuid.NewString(),
		Name:        resp.Name,
		Modules:     modules,
		ReportPath:  resp.ReportPath,
		CompletedAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event AnalysisCompleted) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, AnalysisCompleted) error { return nil }

type natsPublisher struct {
	conn    *nats.Conn
	subject string
}

// Connect dials url and returns a publisher on subject along with a close func.
func Connect(url, subject string) (Publisher, func(), error) {
	conn, err := nats.Connect(url, nats.Name("jyotish-atlas"))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p, err := NewPublisher(conn, subject)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return p, func() {
		_ = conn.Drain()
	}, nil
}

func NewPublisher(conn *nats.Conn, subject string) (Publisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("nats connection is nil")
	}
	if subject == "" {
		subject = DefaultSubject
	}
	return &natsPublisher{conn: conn, subject: subject}, nil
}

func (p *natsPublisher) Publish(ctx context.Context, event AnalysisCompleted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	return nil
}
