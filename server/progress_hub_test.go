package server

import (
	"testing"
)

func drain(ch <-chan int) []int {
	var got []int
	for percent := range ch {
		got = append(got, percent)
	}
	return got
}

func TestHubDeliversPublishedValues(t *testing.T) {
	hub := NewProgressHub()
	hub.Create("job")

	ch, cancel, ok := hub.Subscribe("job")
	if !ok {
		t.Fatal("Subscribe failed for a known job")
	}
	defer cancel()

	hub.Publish("job", 25)
	hub.Publish("job", 50)
	hub.Publish("job", 100)
	hub.Finish("job")

	got := drain(ch)
	want := []int{25, 50, 100}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestHubClampsRegressingValues(t *testing.T) {
	hub := NewProgressHub()
	hub.Create("job")
	ch, cancel, _ := hub.Subscribe("job")
	defer cancel()

	hub.Publish("job", 60)
	hub.Publish("job", 40) // must not go backwards
	hub.Finish("job")

	got := drain(ch)
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("progress regressed: %v", got)
		}
	}
}

func TestHubLateSubscriberGetsLastValue(t *testing.T) {
	hub := NewProgressHub()
	hub.Create("job")
	hub.Publish("job", 75)

	ch, cancel, ok := hub.Subscribe("job")
	if !ok {
		t.Fatal("Subscribe failed for a running job")
	}
	defer cancel()

	select {
	case percent := <-ch:
		if percent != 75 {
			t.Fatalf("late subscriber got %d, want 75", percent)
		}
	default:
		t.Fatal("late subscriber received nothing")
	}
}

func TestHubUnknownJob(t *testing.T) {
	hub := NewProgressHub()
	if _, _, ok := hub.Subscribe("ghost"); ok {
		t.Fatal("Subscribe succeeded for an unknown job")
	}
	// Publishing to an unknown job is a no-op, not a panic.
	hub.Publish("ghost", 10)
	hub.Finish("ghost")
}

func TestHubFinishClosesSubscribers(t *testing.T) {
	hub := NewProgressHub()
	hub.Create("job")
	ch, cancel, _ := hub.Subscribe("job")
	defer cancel()

	hub.Finish("job")
	if _, open := <-ch; open {
		t.Fatal("channel still open after Finish")
	}

	// The job is forgotten; a new subscriber cannot attach.
	if _, _, ok := hub.Subscribe("job"); ok {
		t.Fatal("Subscribe succeeded after Finish")
	}
}
