package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ftahirops/xtrend/collector"
	"github.com/ftahirops/xtrend/model"
)

func TestRecorderPlayerRoundTrip(t *testing.T) {
	src := collector.NewStaticSource(rawWithCPU(10), rawWithCPU(20), rawWithCPU(95))
	var buf bytes.Buffer
	rec := NewRecorder(newTestEngine(t, src), &buf)

	ctx := context.Background()
	var live []*model.Report
	for i := 0; i < 3; i++ {
		rep, err := rec.Tick(ctx)
		if err != nil {
			t.Fatalf("Tick() #%d error = %v", i, err)
		}
		live = append(live, rep)
	}
	if err := rec.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Fatalf("recorded %d lines, want 3", got)
	}

	player, err := NewPlayer(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	if player.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", player.Len())
	}
	replay := newTestEngine(t, player)
	for i := 0; i < 3; i++ {
		rep, err := replay.Tick(ctx)
		if err != nil {
			t.Fatalf("replay Tick() #%d error = %v", i, err)
		}
		if rep.Snapshot.LoadScore != live[i].Snapshot.LoadScore {
			t.Errorf("replay #%d load score = %v, want %v", i, rep.Snapshot.LoadScore, live[i].Snapshot.LoadScore)
		}
		if rep.Level() != live[i].Level() {
			t.Errorf("replay #%d level = %v, want %v", i, rep.Level(), live[i].Level())
		}
		stored, ok := player.Recorded(i)
		if !ok || stored.ID != live[i].ID {
			t.Errorf("Recorded(%d) = %v, want report %s", i, stored, live[i].ID)
		}
	}

	select {
	case <-player.Done():
	default:
		t.Error("Done() not closed after last frame")
	}
	if _, err := replay.Tick(ctx); !errors.Is(err, ErrReplayFinished) {
		t.Errorf("Tick() past end error = %v, want ErrReplayFinished", err)
	}
}

func TestPlayerAcceptsReportDocuments(t *testing.T) {
	// Shape of a saved report file: numeric strings plus extra keys.
	doc := `{"cpu":"12.34","memoryUsedGB":"3.21","memoryTotalGB":"16.00","diskUsedGB":"100.00",` +
		`"diskTotalGB":"500.00","loadScore":20.1,"alerts":[{"level":"info","message":"ok","emoji":"✅"}],` +
		`"timestamp":"2024-01-01T00:00:00Z"}`
	player, err := NewPlayer(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("NewPlayer() error = %v", err)
	}
	raw, err := player.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	snap, err := model.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if snap.CPUPercent != 12.34 || snap.MemoryTotalGB != 16 {
		t.Errorf("snapshot = %+v, want cpu 12.34 and memory total 16", snap)
	}
	if snap.NetRxMBps != 0 || snap.NetTxMBps != 0 {
		t.Errorf("missing network fields = %v/%v, want 0/0", snap.NetRxMBps, snap.NetTxMBps)
	}
}

func TestPlayerRejectsMalformedInput(t *testing.T) {
	input := `{"cpu": 10, "memoryTotalGB": 16}` + "\n" + `{"cpu": ` + "\n"
	if _, err := NewPlayer(strings.NewReader(input)); err == nil {
		t.Fatal("NewPlayer() on truncated input succeeded, want error")
	}
}

func TestPlayerEmpty(t *testing.T) {
	player, err := NewPlayer(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	select {
	case <-player.Done():
	default:
		t.Error("Done() not closed for empty recording")
	}
	if _, err := player.Collect(context.Background()); !errors.Is(err, ErrReplayFinished) {
		t.Errorf("Collect() error = %v, want ErrReplayFinished", err)
	}
}
