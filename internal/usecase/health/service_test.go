package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks[CheckIndex] != CheckOK {
		t.Errorf("expected index %q, got %q", CheckOK, r.Checks[CheckIndex])
	}
	if r.Checks[CheckEmbedding] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks[CheckEmbedding])
	}
}

func TestCheck_IndexError(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("conn refused")}, &mockEmbeddingChecker{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckIndex] != CheckError {
		t.Errorf("expected index %q, got %q", CheckError, r.Checks[CheckIndex])
	}
	if r.Checks[CheckEmbedding] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks[CheckEmbedding])
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	svc := New(&mockPinger{}, &mockEmbeddingChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckEmbedding] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks[CheckEmbedding])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("index down")},
		&mockEmbeddingChecker{err: errors.New("emb down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks[CheckIndex] != CheckError {
		t.Error("expected index error")
	}
	if r.Checks[CheckEmbedding] != CheckError {
		t.Error("expected embedding error")
	}
}

func TestCheck_NoEmbedding(t *testing.T) {
	svc := New(&mockPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[CheckEmbedding]; ok {
		t.Error("embedding check should be absent when embedding is nil")
	}
	if _, ok := r.Checks[CheckCache]; ok {
		t.Error("cache check should be absent when no cache is configured")
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockPinger{}, nil).WithCache(&mockPinger{err: errors.New("cache down")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks[CheckCache] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks[CheckCache])
	}
}
