package identity

import (
	"context"
	"errors"
	"testing"

	"persona-l/storage"
)

type fakeBackend struct {
	registerCalls []string
	registerErr   error
	info          RequestInfo
	infoErr       error
}

func (f *fakeBackend) RegisterUser(ctx context.Context, id string) error {
	f.registerCalls = append(f.registerCalls, id)
	return f.registerErr
}

func (f *fakeBackend) RequestInfo(ctx context.Context, id string) (RequestInfo, error) {
	if f.infoErr != nil {
		return RequestInfo{}, f.infoErr
	}
	info := f.info
	info.UUID = id
	return info, nil
}

func newTestKV(t *testing.T) *storage.KV {
	t.Helper()
	kv, err := storage.NewKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewKV: %v", err)
	}
	return kv
}

func TestIdentifierStableAcrossCalls(t *testing.T) {
	kv := newTestKV(t)
	svc := NewService(kv, nil)
	ctx := context.Background()

	first, err := svc.Identifier(ctx)
	if err != nil {
		t.Fatalf("Identifier: %v", err)
	}
	if first == "" {
		t.Fatal("identifier is empty")
	}

	second, err := svc.Identifier(ctx)
	if err != nil {
		t.Fatalf("Identifier: %v", err)
	}
	if second != first {
		t.Fatalf("identifier changed: %q then %q", first, second)
	}
}

func TestIdentifierSurvivesRestart(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	first, _ := NewService(kv, nil).Identifier(ctx)

	// Fresh service over the same store simulates a restart
	second, err := NewService(kv, nil).Identifier(ctx)
	if err != nil {
		t.Fatalf("Identifier: %v", err)
	}
	if second != first {
		t.Fatalf("identifier changed after restart: %q then %q", first, second)
	}
}

func TestRegistrationHappensOnceOnFirstCreate(t *testing.T) {
	kv := newTestKV(t)
	backend := &fakeBackend{}
	svc := NewService(kv, backend)
	ctx := context.Background()

	id, _ := svc.Identifier(ctx)
	svc.Identifier(ctx)

	if len(backend.registerCalls) != 1 {
		t.Fatalf("RegisterUser called %d times, want 1", len(backend.registerCalls))
	}
	if backend.registerCalls[0] != id {
		t.Fatalf("registered %q, want %q", backend.registerCalls[0], id)
	}

	// A restart over an existing identifier must not register again
	backend2 := &fakeBackend{}
	NewService(kv, backend2).Identifier(ctx)
	if len(backend2.registerCalls) != 0 {
		t.Fatalf("RegisterUser called %d times after restart, want 0", len(backend2.registerCalls))
	}
}

func TestRegistrationFailureIsNotFatal(t *testing.T) {
	kv := newTestKV(t)
	backend := &fakeBackend{registerErr: errors.New("server down")}
	svc := NewService(kv, backend)

	id, err := svc.Identifier(context.Background())
	if err != nil {
		t.Fatalf("Identifier: %v", err)
	}
	if id == "" {
		t.Fatal("identifier is empty despite registration failure")
	}
}

func TestRequestInfoNilBackend(t *testing.T) {
	kv := newTestKV(t)
	svc := NewService(kv, nil)

	info, err := svc.RequestInfo(context.Background())
	if err != nil {
		t.Fatalf("RequestInfo: %v", err)
	}
	if info.UUID == "" {
		t.Fatal("UUID is empty")
	}
	if info.Used != 0 || info.Total != 0 {
		t.Fatalf("info = %+v, want zero counters without a backend", info)
	}
}

func TestRequestInfoFromBackend(t *testing.T) {
	kv := newTestKV(t)
	backend := &fakeBackend{info: RequestInfo{Used: 3, Remaining: 17, Total: 20}}
	svc := NewService(kv, backend)

	info, err := svc.RequestInfo(context.Background())
	if err != nil {
		t.Fatalf("RequestInfo: %v", err)
	}
	if info.Used != 3 || info.Remaining != 17 || info.Total != 20 {
		t.Fatalf("info = %+v", info)
	}
	if info.UUID == "" {
		t.Fatal("UUID is empty")
	}
}
