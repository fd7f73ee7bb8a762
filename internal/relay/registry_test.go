package relay

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
)

func sorted(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

func TestSubscribeIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("c1", "p1")
	r.Subscribe("c1", "p1")
	r.Subscribe("c1", "p1")

	if got := r.SubscribersOf("p1"); len(got) != 1 || got[0] != "c1" {
		t.Fatalf("expected exactly [c1], got %v", got)
	}
	if got := r.Topics("c1"); len(got) != 1 || got[0] != "p1" {
		t.Fatalf("expected exactly [p1], got %v", got)
	}
}

func TestUnsubscribeAbsentIsNoOp(t *testing.T) {
	r := NewRegistry()
	r.Unsubscribe("ghost", "p1")

	r.Subscribe("c1", "p1")
	r.Unsubscribe("c1", "p2") // not a member of p2
	if got := r.SubscribersOf("p1"); len(got) != 1 {
		t.Fatalf("p1 subscribers disturbed: %v", got)
	}
}

func TestDropConnectionRemovesEveryTopic(t *testing.T) {
	r := NewRegistry()
	r.Subscribe("c1", "p1")
	r.Subscribe("c1", "p2")
	r.Subscribe("c2", "p1")

	r.DropConnection("c1")

	for _, topic := range []string{"p1", "p2"} {
		for _, id := range r.SubscribersOf(topic) {
			if id == "c1" {
				t.Fatalf("c1 still subscribed to %s after drop", topic)
			}
		}
	}
	if got := r.Topics("c1"); len(got) != 0 {
		t.Fatalf("dropped connection still holds topics: %v", got)
	}
	if got := r.SubscribersOf("p1"); len(got) != 1 || got[0] != "c2" {
		t.Fatalf("sibling connection disturbed: %v", got)
	}

	// dropping again is harmless
	r.DropConnection("c1")
}

// Random operation sequences, checked against a model map: the registry's
// forward and reverse views must agree with the model and with each other
// after every operation.
func TestForwardReverseStayInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	r := NewRegistry()
	model := map[string]map[string]bool{} // conn -> topic -> member

	conns := []string{"c1", "c2", "c3", "c4"}
	topics := []string{"p1", "p2", "p3"}

	for i := 0; i < 5000; i++ {
		c := conns[rng.Intn(len(conns))]
		p := topics[rng.Intn(len(topics))]

		switch rng.Intn(5) {
		case 0, 1:
			r.Subscribe(c, p)
			if model[c] == nil {
				model[c] = map[string]bool{}
			}
			model[c][p] = true
		case 2, 3:
			r.Unsubscribe(c, p)
			delete(model[c], p)
		case 4:
			r.DropConnection(c)
			delete(model, c)
		}
	}

	for _, c := range conns {
		want := []string{}
		for p, ok := range model[c] {
			if ok {
				want = append(want, p)
			}
		}
		sort.Strings(want)
		if got := sorted(r.Topics(c)); fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("conn %s topics = %v, want %v", c, got, want)
		}
	}
	for _, p := range topics {
		want := []string{}
		for c, ts := range model {
			if ts[p] {
				want = append(want, c)
			}
		}
		sort.Strings(want)
		if got := sorted(r.SubscribersOf(p)); fmt.Sprint(got) != fmt.Sprint(want) {
			t.Fatalf("topic %s subscribers = %v, want %v", p, got, want)
		}
	}
}

func TestConcurrentChurnLeavesNothingBehind(t *testing.T) {
	r := NewRegistry()
	topics := []string{"p1", "p2", "p3", "p4"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			connID := fmt.Sprintf("c%d", i)
			for j := 0; j < 200; j++ {
				r.Subscribe(connID, topics[j%len(topics)])
				if j%3 == 0 {
					r.Unsubscribe(connID, topics[(j+1)%len(topics)])
				}
			}
			r.DropConnection(connID)
		}(i)
	}
	wg.Wait()

	for _, p := range topics {
		if got := r.SubscribersOf(p); len(got) != 0 {
			t.Fatalf("topic %s retained subscribers after all drops: %v", p, got)
		}
	}
}
