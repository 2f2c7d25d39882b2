package chat

import (
	"testing"
	"time"

	"github.com/matheus3301/fiberglass/internal/bus"
	"github.com/matheus3301/fiberglass/internal/keys"
	"github.com/matheus3301/fiberglass/internal/kv"
)

func testRepo(t *testing.T) (*Repository, *kv.Memory, *bus.Bus) {
	t.Helper()
	store := kv.NewMemory()
	b := bus.New()
	return New(store, keys.DefaultNamespace, b, nil), store, b
}

func TestConversationScenario(t *testing.T) {
	r, _, _ := testRepo(t)

	th := r.CreateThread("Ali", "0912000")
	if th.UnreadCount != 0 {
		t.Fatalf("new thread unread = %d, want 0", th.UnreadCount)
	}

	if _, ok := r.Send(th.ID, "hi", Customer); !ok {
		t.Fatal("Send(customer) not ok")
	}
	got := r.Thread(th.ID)
	if got.UnreadCount != 1 || got.LastMessage != "hi" {
		t.Errorf("after customer send: unread=%d last=%q, want 1, hi", got.UnreadCount, got.LastMessage)
	}

	if _, ok := r.Send(th.ID, "hello", Admin); !ok {
		t.Fatal("Send(admin) not ok")
	}
	got = r.Thread(th.ID)
	if got.UnreadCount != 1 || got.LastMessage != "hello" {
		t.Errorf("after admin send: unread=%d last=%q, want 1, hello", got.UnreadCount, got.LastMessage)
	}

	r.MarkRead(th.ID)
	if got := r.Thread(th.ID); got.UnreadCount != 0 {
		t.Errorf("after MarkRead: unread = %d, want 0", got.UnreadCount)
	}
}

func TestCreateThreadDedupByPhone(t *testing.T) {
	r, _, _ := testRepo(t)

	first := r.CreateThread("Ali", "0912000")
	second := r.CreateThread("Reza", "0912000")
	if first.ID != second.ID {
		t.Errorf("second create returned id %q, want %q", second.ID, first.ID)
	}
	if second.CustomerName != "Ali" {
		t.Errorf("name = %q, want the first stored name Ali", second.CustomerName)
	}
	if n := len(r.Threads()); n != 1 {
		t.Errorf("threads = %d, want 1", n)
	}
}

func TestCreateThreadPrepends(t *testing.T) {
	r, _, _ := testRepo(t)
	a := r.CreateThread("A", "1")
	b := r.CreateThread("B", "2")

	threads := r.Threads()
	if len(threads) != 2 || threads[0].ID != b.ID || threads[1].ID != a.ID {
		t.Errorf("order = %v, want [B A]", ids(threads))
	}
}

func TestSendMovesThreadToFront(t *testing.T) {
	r, _, _ := testRepo(t)
	a := r.CreateThread("A", "1")
	b := r.CreateThread("B", "2")
	c := r.CreateThread("C", "3")

	for _, tc := range []struct {
		id     string
		sender Sender
	}{
		{a.ID, Customer},
		{b.ID, Admin},
		{a.ID, Admin},
		{c.ID, Customer},
	} {
		r.Send(tc.id, "x", tc.sender)
		if front := r.Threads()[0].ID; front != tc.id {
			t.Errorf("after send to %s by %s, front = %s", tc.id, tc.sender, front)
		}
	}
	if n := len(r.Threads()); n != 3 {
		t.Errorf("threads = %d, want 3", n)
	}
}

func TestMessagesKeepSendOrder(t *testing.T) {
	r, _, _ := testRepo(t)
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	r.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	th := r.CreateThread("A", "1")
	for _, text := range []string{"one", "two", "three"} {
		r.Send(th.ID, text, Customer)
	}

	msgs := r.Messages(th.ID)
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Message != want {
			t.Errorf("msgs[%d] = %q, want %q", i, msgs[i].Message, want)
		}
		if msgs[i].ChatID != th.ID || msgs[i].IsRead {
			t.Errorf("msgs[%d] = %+v", i, msgs[i])
		}
		if i > 0 && !msgs[i].CreatedAt.After(msgs[i-1].CreatedAt) {
			t.Errorf("msgs[%d] not after msgs[%d]", i, i-1)
		}
	}
	if got := r.Thread(th.ID).LastMessageTime; !got.Equal(msgs[2].CreatedAt) {
		t.Errorf("lastMessageTime = %v, want %v", got, msgs[2].CreatedAt)
	}
}

func TestMarkReadOnlyCustomerMessages(t *testing.T) {
	r, _, _ := testRepo(t)
	th := r.CreateThread("A", "1")
	for i := 0; i < 3; i++ {
		r.Send(th.ID, "q", Customer)
	}
	r.Send(th.ID, "a", Admin)

	if got := r.Thread(th.ID).UnreadCount; got != 3 {
		t.Fatalf("unread = %d, want 3", got)
	}

	r.MarkRead(th.ID)
	r.MarkRead(th.ID)

	if got := r.Thread(th.ID).UnreadCount; got != 0 {
		t.Errorf("unread = %d, want 0", got)
	}
	for _, m := range r.Messages(th.ID) {
		switch m.Sender {
		case Customer:
			if !m.IsRead {
				t.Errorf("customer message %q not read", m.Message)
			}
		case Admin:
			if m.IsRead {
				t.Errorf("admin message %q flipped to read", m.Message)
			}
		}
	}

	r.Send(th.ID, "later", Admin)
	if got := r.Thread(th.ID).UnreadCount; got != 0 {
		t.Errorf("admin send after MarkRead: unread = %d, want 0", got)
	}
}

func TestDeleteRemovesThreadAndMessages(t *testing.T) {
	r, store, _ := testRepo(t)
	th := r.CreateThread("A", "1")
	other := r.CreateThread("B", "2")
	r.Send(th.ID, "hi", Customer)

	if !r.Delete(th.ID) {
		t.Fatal("Delete returned false")
	}
	for _, x := range r.Threads() {
		if x.ID == th.ID {
			t.Error("deleted thread still listed")
		}
	}
	if msgs := r.Messages(th.ID); len(msgs) != 0 {
		t.Errorf("messages after delete = %d, want 0", len(msgs))
	}
	if _, ok, _ := store.Get(keys.Namespace(keys.DefaultNamespace).ThreadMessages(th.ID)); ok {
		t.Error("message key survived delete")
	}
	if r.Thread(other.ID) == nil {
		t.Error("unrelated thread removed")
	}
	if r.Delete(th.ID) {
		t.Error("second Delete returned true")
	}
}

func TestSendToUnknownThread(t *testing.T) {
	r, store, _ := testRepo(t)
	if _, ok := r.Send("missing", "hi", Customer); ok {
		t.Error("Send to missing thread returned ok")
	}
	if _, ok, _ := store.Get(keys.Namespace(keys.DefaultNamespace).ThreadMessages("missing")); ok {
		t.Error("orphan message collection written")
	}

	th := r.CreateThread("A", "1")
	if _, ok := r.Send(th.ID, "hi", Sender("bot")); ok {
		t.Error("Send from unknown sender returned ok")
	}
}

func TestMarkReadUnknownThreadWritesNothing(t *testing.T) {
	r, store, b := testRepo(t)
	key := keys.Namespace(keys.DefaultNamespace).ThreadMessages("ghost")
	stale := `[{"id":"m1","chatId":"ghost","sender":"customer","message":"x","isRead":false}]`
	_ = store.Set(key, stale)
	ch, unsub := b.Subscribe("chat.", 4)
	defer unsub()

	r.MarkRead("ghost")

	if v, _, _ := store.Get(key); v != stale {
		t.Errorf("message key rewritten: %s", v)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	default:
	}
}

func TestTotalUnreadReadsPersistedState(t *testing.T) {
	origin := kv.NewOrigin(0)
	admin := New(origin.Open(), keys.DefaultNamespace, nil, nil)
	customer := New(origin.Open(), keys.DefaultNamespace, nil, nil)

	a := customer.CreateThread("A", "1")
	b := customer.CreateThread("B", "2")
	customer.Send(a.ID, "x", Customer)
	customer.Send(a.ID, "y", Customer)
	customer.Send(b.ID, "z", Customer)

	if got := admin.TotalUnread(); got != 3 {
		t.Errorf("TotalUnread = %d, want 3", got)
	}
	admin.MarkRead(a.ID)
	if got := customer.TotalUnread(); got != 1 {
		t.Errorf("TotalUnread after MarkRead = %d, want 1", got)
	}
}

func TestCorruptThreadListFallsBackToEmpty(t *testing.T) {
	r, store, _ := testRepo(t)
	_ = store.Set("fiberglass_chats", "not json")

	if threads := r.Threads(); len(threads) != 0 {
		t.Errorf("threads = %v, want empty", threads)
	}
	th := r.CreateThread("A", "1")
	if got := r.Threads(); len(got) != 1 || got[0].ID != th.ID {
		t.Errorf("corrupt value not overwritten: %v", got)
	}
}

func TestWritesSignal(t *testing.T) {
	r, _, b := testRepo(t)
	ch, unsub := b.Subscribe("chat.", 16)
	defer unsub()

	th := r.CreateThread("A", "1")
	r.Send(th.ID, "hi", Customer)

	want := []string{keys.ThreadsChanged, keys.ThreadMessagesChanged, keys.ThreadsChanged}
	for i, kind := range want {
		select {
		case evt := <-ch:
			if evt.Kind != kind {
				t.Errorf("event %d kind = %q, want %q", i, evt.Kind, kind)
			}
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for event %d", i)
		}
	}

	// Dedup hit writes nothing.
	r.CreateThread("A", "1")
	select {
	case evt := <-ch:
		t.Errorf("unexpected event on dedup: %v", evt)
	default:
	}
}

func TestFailedWriteIsAbsorbed(t *testing.T) {
	store := kv.NewOrigin(150).Open()
	b := bus.New()
	r := New(store, keys.DefaultNamespace, b, nil)
	ch, unsub := b.Subscribe("chat.", 16)
	defer unsub()

	th := r.CreateThread("a customer with a rather long name", "09120000000")
	if th.ID == "" {
		t.Fatal("CreateThread returned empty thread")
	}
	select {
	case evt := <-ch:
		t.Errorf("signal emitted for a failed write: %v", evt)
	default:
	}
	if n := len(r.Threads()); n != 0 {
		t.Errorf("threads = %d, want 0 after quota failure", n)
	}
}

func TestRegisterAndResume(t *testing.T) {
	origin := kv.NewOrigin(0)
	tab := New(origin.Open(), keys.DefaultNamespace, nil, nil)

	if tab.Resume() != nil {
		t.Fatal("Resume with nothing remembered returned a thread")
	}
	th := tab.Register("Ali", "0912000")

	// A later visit on the same origin picks the conversation back up.
	later := New(origin.Open(), keys.DefaultNamespace, nil, nil)
	got := later.Resume()
	if got == nil || got.ID != th.ID {
		t.Fatalf("Resume = %v, want %s", got, th.ID)
	}
	if name := later.RememberedName(); name != "Ali" {
		t.Errorf("RememberedName = %q, want Ali", name)
	}

	later.Delete(th.ID)
	if later.Resume() != nil {
		t.Error("Resume returned a deleted thread")
	}
	later.Forget()
	if later.RememberedName() != "" {
		t.Error("Forget kept the name")
	}
}

func ids(threads []Thread) []string {
	out := make([]string, len(threads))
	for i, t := range threads {
		out[i] = t.CustomerName
	}
	return out
}
