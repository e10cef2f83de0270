package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"darlingdetails/models"
	"darlingdetails/pkg/events"
	"darlingdetails/pkg/media"
)

type fakeRepo struct {
	mu         sync.Mutex
	nextID     uint
	products   map[uint]models.Product
	categories map[uint]bool
	failCreate bool
	failSave   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{products: map[uint]models.Product{}, categories: map[uint]bool{1: true}}
}

func (r *fakeRepo) Create(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return errors.New("insert failed")
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.products[p.ID] = *p
	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
	}
	return &p, nil
}

func (r *fakeRepo) List(_ context.Context, _ Filter) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeRepo) Save(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return errors.New("commit failed")
	}
	r.products[p.ID] = *p
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeRepo) CategoryExists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.categories[id], nil
}

func (r *fakeRepo) stored(t *testing.T, id uint) models.Product {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		t.Fatalf("product %d not stored", id)
	}
	return p
}

type fakeStore struct {
	mu         sync.Mutex
	objects    map[string][]byte
	failRemove bool
}

func newFakeStore() *fakeStore { return &fakeStore{objects: map[string][]byte{}} }

func (s *fakeStore) Put(_ context.Context, area, name string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[area+"/"+name] = data
	return nil
}

func (s *fakeStore) Open(_ context.Context, area, name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[area+"/"+name]
	if !ok {
		return nil, media.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) Remove(_ context.Context, area, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRemove {
		return errors.New("permission denied")
	}
	key := area + "/" + name
	if _, ok := s.objects[key]; !ok {
		return media.ErrNotFound
	}
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) List(_ context.Context, area string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for key := range s.objects {
		if name, ok := strings.CutPrefix(key, area+"/"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeStore) has(area, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[area+"/"+name]
	return ok
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.ProductEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, ev events.ProductEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func pngUpload(t *testing.T, filename string, w, h int) *media.UploadCandidate {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 60, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &media.UploadCandidate{
		OriginalFilename: filename,
		SizeBytes:        int64(buf.Len()),
		Source:           media.BytesSource(buf.Bytes()),
	}
}
