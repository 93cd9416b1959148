package tasks

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Manager runs named background tasks, either on an interval or on demand.
// Scheduled and triggered runs stop when the context passed to NewManager is done.
type Manager struct {
	ctx   context.Context
	tasks sync.Map
	wg    sync.WaitGroup
}

func NewManager(ctx context.Context) *Manager {
	return &Manager{ctx: ctx}
}

// Register adds a task. An interval of 0 registers a task that only runs when triggered.
func (m *Manager) Register(name string, interval time.Duration, fn TaskFunc) *RunnableTask {
	task := &RunnableTask{
		Name:         name,
		Interval:     interval,
		Handler:      fn,
		registeredAt: time.Now(),
		logs:         make([]LogEntry, 0),
	}
	m.tasks.Store(name, task)

	if interval > 0 {
		m.wg.Add(1)
		go m.scheduler(task)
	}
	return task
}

// Trigger starts a run of the task in the background.
func (m *Manager) Trigger(name string) error {
	task, err := m.get(name)
	if err != nil {
		return err
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		_ = task.Run(m.ctx)
	}()
	return nil
}

// ListStatus returns the status of every task, ordered by name.
func (m *Manager) ListStatus() []TaskStatus {
	list := make([]TaskStatus, 0)
	m.tasks.Range(func(key, value any) bool {
		task := value.(*RunnableTask)
		list = append(list, task.Status())
		return true
	})
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}

func (m *Manager) GetLogs(name string) ([]LogEntry, error) {
	task, err := m.get(name)
	if err != nil {
		return nil, err
	}
	return task.Logs(), nil
}

// Wait blocks until all scheduled and triggered runs have returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) get(name string) (*RunnableTask, error) {
	t, ok := m.tasks.Load(name)
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return t.(*RunnableTask), nil
}

func (m *Manager) scheduler(task *RunnableTask) {
	defer m.wg.Done()

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			_ = task.Run(m.ctx)
		}
	}
}
