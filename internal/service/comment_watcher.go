package service

import (
	"context"
	"sync"

	"suma/internal/model"
)

// CommentWatcher follows one subject (a task or a piece of text) the way a
// single comment chip does: each Update supersedes the previous request and
// only the latest result is ever published.
type CommentWatcher struct {
	svc      *CommentService
	onChange func(model.CommentState)

	mu     sync.Mutex
	state  model.CommentState
	gen    uint64
	cancel context.CancelFunc
	closed bool

	inflight sync.WaitGroup
}

// Watch creates a watcher. onChange, when set, is called with every new
// state while the watcher lock is held; it must not call back into the watcher.
func (s *CommentService) Watch(onChange func(model.CommentState)) *CommentWatcher {
	return &CommentWatcher{svc: s, onChange: onChange}
}

// Update points the watcher at new inputs, cancelling any in-flight request.
func (w *CommentWatcher) Update(taskID, assignmentText string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.abortLocked()
	w.gen++
	gen := w.gen

	key, normalized, ok := CommentKey(taskID, assignmentText)
	if !ok {
		w.publishLocked(model.CommentState{})
		return
	}

	if comment, hit := w.svc.cached(context.Background(), key); hit {
		w.publishLocked(model.CommentState{Comment: &comment})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.publishLocked(model.CommentState{Comment: w.state.Comment, Loading: true})

	w.inflight.Add(1)
	detach(w.svc.logger, "comment_fetch", func() {
		defer w.inflight.Done()
		comment, err := w.svc.fetch(ctx, key, normalized)

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed || gen != w.gen || ctx.Err() != nil {
			return
		}
		w.abortLocked()

		if err != nil {
			msg := w.svc.formatter.AnalysisFailed()
			w.publishLocked(model.CommentState{Error: &msg})
			return
		}
		w.publishLocked(model.CommentState{Comment: &comment})
	})
}

// State returns the latest published state
func (w *CommentWatcher) State() model.CommentState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Close cancels the in-flight request; later results are discarded.
func (w *CommentWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.abortLocked()
}

// Wait blocks until every request goroutine started by the watcher returned
func (w *CommentWatcher) Wait() {
	w.inflight.Wait()
}

func (w *CommentWatcher) abortLocked() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

func (w *CommentWatcher) publishLocked(s model.CommentState) {
	w.state = s
	if w.onChange != nil {
		w.onChange(s)
	}
}
