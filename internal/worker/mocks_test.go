package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/betbot/analytics-api/internal/models"
)

// MockClickHouseConn implements driver.Conn for testing
type MockClickHouseConn struct {
	driver.Conn

	mu        sync.Mutex
	Sent      [][]any
	Batches   int
	SendErr   error
	AppendErr func(row []any) error
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]any(nil), m.Sent...)
}

// MockBatch buffers appended rows until Send
type MockBatch struct {
	driver.Batch
	conn    *MockClickHouseConn
	pending [][]any
}

func (m *MockBatch) Append(v ...interface{}) error {
	if m.conn.AppendErr != nil {
		if err := m.conn.AppendErr(v); err != nil {
			return err
		}
	}
	m.pending = append(m.pending, v)
	return nil
}

func (m *MockBatch) Send() error {
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.conn.Batches++
	m.conn.Sent = append(m.conn.Sent, m.pending...)
	return nil
}

var errBadRecord = errors.New("bad record")

func audit(gameID string) *models.PredictionAudit {
	return &models.PredictionAudit{
		ID:               "id-" + gameID,
		GameID:           gameID,
		HomeTeam:         "Boston Red Sox",
		AwayTeam:         "New York Yankees",
		PredictedWinner:  "Boston Red Sox",
		WinProbability:   0.58,
		ConfidenceLevel:  models.ConfidenceMedium,
		PredictionSource: models.SourceRuleBased,
	}
}

// MockTrendService implements logic.TrendService
type MockTrendService struct {
	mu          sync.Mutex
	Calls       int
	RefreshFunc func(ctx context.Context) (*models.TrendBoard, error)
}

func (m *MockTrendService) Board(ctx context.Context) (*models.TrendBoard, error) {
	return m.Refresh(ctx)
}

func (m *MockTrendService) Refresh(ctx context.Context) (*models.TrendBoard, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return &models.TrendBoard{}, nil
}
