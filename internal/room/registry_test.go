package room

import (
	"fmt"
	"sync"
	"testing"
)

// fakeSession テスト用のSession実装
type fakeSession struct {
	id string
}

func (f *fakeSession) ID() string { return f.id }

func (f *fakeSession) Send(message []byte) error { return nil }

func memberIDs(r *Registry, conversationID string) map[string]bool {
	ids := make(map[string]bool)
	for _, s := range r.MembersOf(conversationID) {
		ids[s.ID()] = true
	}
	return ids
}

// TestJoinAndMembersOf 参加したセッションだけがメンバーになることを確認
func TestJoinAndMembersOf(t *testing.T) {
	r := NewRegistry()
	s1 := &fakeSession{id: "s1"}
	s2 := &fakeSession{id: "s2"}
	s3 := &fakeSession{id: "s3"}

	r.Join(s1, "42")
	r.Join(s2, "42")
	r.Join(s3, "other")

	ids := memberIDs(r, "42")
	if len(ids) != 2 || !ids["s1"] || !ids["s2"] {
		t.Errorf("Room 42 should contain s1 and s2, got %v", ids)
	}
	if ids["s3"] {
		t.Error("s3 joined a different room and must not be a member of 42")
	}
}

// TestJoinIdempotent 二重参加しても一度の退出でメンバーから外れることを確認
func TestJoinIdempotent(t *testing.T) {
	r := NewRegistry()
	s := &fakeSession{id: "s1"}

	r.Join(s, "42")
	r.Join(s, "42")

	if len(r.MembersOf("42")) != 1 {
		t.Errorf("Joining twice should count once, got %d members", len(r.MembersOf("42")))
	}

	r.Leave(s, "42")
	if len(r.MembersOf("42")) != 0 {
		t.Error("One leave after two joins should remove the session")
	}
}

// TestLeaveIdempotent 退出は冪等であることを確認
func TestLeaveIdempotent(t *testing.T) {
	r := NewRegistry()
	s := &fakeSession{id: "s1"}

	// 未参加のルームからの退出はエラーにならない
	r.Leave(s, "42")
	r.Leave(s, "missing")
	r.LeaveAll(s)

	if len(r.MembersOf("42")) != 0 {
		t.Error("Room 42 should stay empty")
	}
}

// TestLeaveAll 切断時に全ルームから外れることを確認
func TestLeaveAll(t *testing.T) {
	r := NewRegistry()
	s := &fakeSession{id: "s1"}
	other := &fakeSession{id: "s2"}

	r.Join(s, "a")
	r.Join(s, "b")
	r.Join(s, "c")
	r.Join(other, "b")

	r.LeaveAll(s)

	for _, conversationID := range []string{"a", "c"} {
		if len(r.MembersOf(conversationID)) != 0 {
			t.Errorf("Room %s should be empty after LeaveAll", conversationID)
		}
	}
	if ids := memberIDs(r, "b"); len(ids) != 1 || !ids["s2"] {
		t.Errorf("Room b should still contain s2, got %v", ids)
	}
}

// TestUnregister 登録解除で接続一覧と全ルームから外れることを確認
func TestUnregister(t *testing.T) {
	r := NewRegistry()
	s := &fakeSession{id: "s1"}

	r.Register(s)
	r.Join(s, "42")

	r.Unregister(s)

	if len(r.Sessions()) != 0 {
		t.Error("Unregistered session should not appear in Sessions()")
	}
	if len(r.MembersOf("42")) != 0 {
		t.Error("Unregistered session should not remain in any room")
	}

	// 二重解除もエラーにならない
	r.Unregister(s)
}

// TestUnknownConversation 未知のルームは空ルームとして扱うことを確認
func TestUnknownConversation(t *testing.T) {
	r := NewRegistry()
	members := r.MembersOf("never-joined")
	if len(members) != 0 {
		t.Errorf("Unknown conversation should be an empty room, got %d members", len(members))
	}
}

// TestConcurrentAccess 並行join/leave/参照でメンバー集合が壊れないことを確認
func TestConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	const workers = 32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			s := &fakeSession{id: fmt.Sprintf("s%d", index)}
			r.Register(s)
			for j := 0; j < 100; j++ {
				r.Join(s, "42")
				r.MembersOf("42")
				r.Leave(s, "42")
				r.Join(s, "42")
			}
		}(i)
	}
	wg.Wait()

	// 各ワーカーは最後にJoinで終わるので全員メンバーのはず
	if got := len(r.MembersOf("42")); got != workers {
		t.Errorf("Expected %d members after concurrent churn, got %d", workers, got)
	}
}
