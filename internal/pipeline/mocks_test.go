package pipeline

import (
	"context"
	"sync"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
)

// MockClient is a mock implementation of llm.Client
type MockClient struct {
	GenerateFunc func(ctx context.Context, req *llm.Request) (*llm.Response, error)
	Requests     []*llm.Request
}

func (m *MockClient) Generate(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.Requests = append(m.Requests, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &llm.Response{}, nil
}

func (m *MockClient) Close() error { return nil }

// respondWith returns a MockClient answering every call with resp
func respondWith(resp *llm.Response) *MockClient {
	return &MockClient{GenerateFunc: func(context.Context, *llm.Request) (*llm.Response, error) {
		return resp, nil
	}}
}

// MockStore keeps jobs in memory and records every write. The Func fields
// override the default behavior when set.
type MockStore struct {
	mu         sync.Mutex
	jobs       map[string]*job.Job
	Writes     []job.Status
	InsertFunc func(ctx context.Context, j *job.Job) error
	UpdateFunc func(ctx context.Context, j *job.Job) error
}

func newMockStore() *MockStore {
	return &MockStore{jobs: make(map[string]*job.Job)}
}

func (m *MockStore) Insert(ctx context.Context, j *job.Job) error {
	if m.InsertFunc != nil {
		if err := m.InsertFunc(ctx, j); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = j.Clone()
	m.Writes = append(m.Writes, j.Status)
	return nil
}

func (m *MockStore) Update(ctx context.Context, j *job.Job) error {
	if m.UpdateFunc != nil {
		if err := m.UpdateFunc(ctx, j); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.jobs[j.ID]; ok {
		m.jobs[j.ID] = j.Clone()
	}
	m.Writes = append(m.Writes, j.Status)
	return nil
}

func (m *MockStore) Get(_ context.Context, id string) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id].Clone(), nil
}

func (m *MockStore) List(context.Context, job.ListOptions) ([]*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, j.Clone())
	}
	return out, nil
}

func (m *MockStore) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[id]
	delete(m.jobs, id)
	return ok, nil
}

func (m *MockStore) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs), nil
}

func (m *MockStore) Close() error { return nil }
