package form

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Upload is a file handed to a Binary input. Open is called once, from a
// background goroutine.
type Upload struct {
	Name      string
	MediaType string
	Open      func() (io.ReadCloser, error)
}

// uploads tracks asynchronous file reads. A newer attach on the same node
// supersedes reads still in flight.
type uploads struct {
	mu      sync.Mutex
	pending sync.WaitGroup
	gen     map[tree.NodeID]int
	read    map[tree.NodeID][]capture.File
}

func newUploads() *uploads {
	return &uploads{
		gen:  make(map[tree.NodeID]int),
		read: make(map[tree.NodeID][]capture.File),
	}
}

func (u *uploads) start(node tree.NodeID, files []Upload) {
	u.mu.Lock()
	u.gen[node]++
	gen := u.gen[node]
	if len(files) == 0 {
		delete(u.read, node)
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()

	u.pending.Add(1)
	go func() {
		defer u.pending.Done()
		out := make([]capture.File, 0, len(files))
		for _, file := range files {
			data, err := readUpload(file)
			if err != nil {
				logger.Warning("form: read upload", file.Name+":", err)
				continue
			}
			out = append(out, capture.File{Name: file.Name, MediaType: file.MediaType, Data: data})
		}
		u.mu.Lock()
		defer u.mu.Unlock()
		if u.gen[node] == gen {
			u.read[node] = out
		}
	}()
}

func readUpload(file Upload) ([]byte, error) {
	if file.Open == nil {
		return nil, errors.New("upload has no content")
	}
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// wait blocks until every started read has finished or ctx is done.
func (u *uploads) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		u.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *uploads) files(node tree.NodeID) []capture.File {
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.read[node])
}

func (u *uploads) drop(keep func(tree.NodeID) bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for node := range u.gen {
		if !keep(node) {
			delete(u.gen, node)
			delete(u.read, node)
		}
	}
}
