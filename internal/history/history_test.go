package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"invagro-dashboard/internal/models"
	"invagro-dashboard/internal/storage"
)

type brokenKV struct{}

func (brokenKV) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (brokenKV) Set(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}

func messages(n int) []models.ChatMessage {
	out := make([]models.ChatMessage, n)
	for i := range out {
		out[i] = models.ChatMessage{Role: models.RoleUser, Content: fmt.Sprintf("m%d", i), Timestamp: "2026-01-01T00:00:00.000Z"}
	}
	return out
}

func TestLoad_MissingKeyIsEmpty(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(0), "", 0)

	got := s.Load(context.Background())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", got)
	}
}

func TestLoad_CorruptPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"object", `{"role":"user"}`},
		{"string", `"hola"`},
		{"number", `42`},
		{"null", `null`},
		{"empty", ``},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := storage.NewMemoryStore(0)
			kv.Set(context.Background(), DefaultKey, []byte(tc.raw))

			got := NewStore(kv, DefaultKey, DefaultLimit).Load(context.Background())
			if len(got) != 0 {
				t.Fatalf("expected empty history, got %d entries", len(got))
			}
		})
	}
}

func TestLoad_ReadErrorIsEmpty(t *testing.T) {
	got := NewStore(brokenKV{}, DefaultKey, DefaultLimit).Load(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty history on read failure, got %d entries", len(got))
	}
}

func TestLoad_DropsNonObjectElements(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	raw := `[{"role":"user","content":"hola","ts":"2026-01-01T00:00:00.000Z"}, 3, null, "x", {"role":"assistant","content":"Listo."}]`
	kv.Set(context.Background(), DefaultKey, []byte(raw))

	got := NewStore(kv, DefaultKey, DefaultLimit).Load(context.Background())
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Content != "hola" || got[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected entries: %#v", got)
	}
}

func TestLoad_NonStringFieldsReplayAsText(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	raw := `[{"role":"user","content":5}, {"role":"assistant","content":true,"ts":null}, {"role":"user"}]`
	kv.Set(context.Background(), DefaultKey, []byte(raw))

	got := NewStore(kv, DefaultKey, DefaultLimit).Load(context.Background())
	if len(got) != 3 {
		t.Fatalf("expected every record kept, got %d", len(got))
	}
	if got[0].Content != "5" || got[1].Content != "true" || got[2].Content != "" {
		t.Fatalf("unexpected contents: %#v", got)
	}
	if got[1].Timestamp != "" || got[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected record: %#v", got[1])
	}
}

func TestNewStore_LimitNeverExceedsCap(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(0), DefaultKey, 500)
	if s.Limit() != DefaultLimit {
		t.Fatalf("expected limit clamped to %d, got %d", DefaultLimit, s.Limit())
	}

	ctx := context.Background()
	if err := s.Save(ctx, messages(300)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := len(s.Load(ctx)); got != DefaultLimit {
		t.Fatalf("expected %d persisted entries, got %d", DefaultLimit, got)
	}

	if NewStore(storage.NewMemoryStore(0), DefaultKey, 50).Limit() != 50 {
		t.Fatal("a smaller limit must be kept")
	}
}

func TestSave_CapsAndKeepsNewest(t *testing.T) {
	for _, n := range []int{0, 1, 199, 200, 201, 450} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			s := NewStore(storage.NewMemoryStore(0), DefaultKey, DefaultLimit)
			ctx := context.Background()

			if err := s.Save(ctx, messages(n)); err != nil {
				t.Fatalf("save failed: %v", err)
			}

			got := s.Load(ctx)
			want := n
			if want > DefaultLimit {
				want = DefaultLimit
			}
			if len(got) != want {
				t.Fatalf("expected %d entries, got %d", want, len(got))
			}
			if n > 0 && got[len(got)-1].Content != fmt.Sprintf("m%d", n-1) {
				t.Fatalf("newest entry must be kept, last is %q", got[len(got)-1].Content)
			}
			if n > DefaultLimit && got[0].Content != fmt.Sprintf("m%d", n-DefaultLimit) {
				t.Fatalf("oldest entries must be evicted first, first is %q", got[0].Content)
			}
		})
	}
}

func TestSave_ReportsStorageError(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(16), DefaultKey, DefaultLimit)

	err := s.Save(context.Background(), messages(5))

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StorageError, got %v", err)
	}
	if se.Op != "save" || !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Fatalf("expected wrapped quota error from save, got %v", err)
	}
}

func TestAppend_StampsAndPersists(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(0), DefaultKey, DefaultLimit)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 123000000, time.FixedZone("PET", -5*3600)) }
	ctx := context.Background()

	msg, err := s.Append(ctx, models.RoleUser, "hola")
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if msg.Timestamp != "2026-10-18T14:30:00.123Z" {
		t.Fatalf("expected UTC ISO timestamp, got %q", msg.Timestamp)
	}

	got := s.Load(ctx)
	if len(got) != 1 || got[0] != msg {
		t.Fatalf("expected stored message %#v, got %#v", msg, got)
	}
}

func TestAppend_FailureStillReturnsMessage(t *testing.T) {
	s := NewStore(brokenKV{}, DefaultKey, DefaultLimit)

	msg, err := s.Append(context.Background(), models.RoleAssistant, "Listo.")
	if err == nil {
		t.Fatal("expected error from broken storage")
	}
	if msg.Content != "Listo." || msg.Role != models.RoleAssistant {
		t.Fatalf("unexpected message: %#v", msg)
	}
}

func TestAppend_RoundTripOrder(t *testing.T) {
	kv := storage.NewMemoryStore(0)
	ctx := context.Background()
	writer := NewStore(kv, DefaultKey, DefaultLimit)

	const n = 37
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		writer.Append(ctx, role, fmt.Sprintf("turn %d", i))
	}

	got := NewStore(kv, DefaultKey, DefaultLimit).Load(ctx)
	if len(got) != n {
		t.Fatalf("expected %d turns after reload, got %d", n, len(got))
	}
	for i, m := range got {
		if m.Content != fmt.Sprintf("turn %d", i) {
			t.Fatalf("turn %d out of order: %q", i, m.Content)
		}
	}
}

func TestTrim(t *testing.T) {
	in := messages(5)

	if got := Trim(in, 10); len(got) != 5 {
		t.Fatalf("expected untouched slice, got %d", len(got))
	}
	if got := Trim(in, 2); len(got) != 2 || got[0].Content != "m3" {
		t.Fatalf("expected last two entries, got %#v", got)
	}
	if got := Trim(in, 0); len(got) != 0 {
		t.Fatalf("expected empty slice, got %d", len(got))
	}
}
