package main

import (
	"bytes"
	"strings"
	"testing"
)

const demoLine = `{"cpu":42.5,"memoryUsedGB":6,"memoryTotalGB":16,"diskUsedGB":120,"diskTotalGB":500,"netRxMBps":0.3,"netTxMBps":0.1}`

func TestEvaluate(t *testing.T) {
	in := demoLine + "\n\n" + strings.Replace(demoLine, `"cpu":42.5`, `"cpu":"95"`, 1) + "\n"
	var out bytes.Buffer
	if err := evaluate(strings.NewReader(in), &out, 10, false); err != nil {
		t.Fatalf("evaluate() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"line 1: score 33.30 [OK]",
		"line 3: score",
		"[CRITICAL]",
		"📈 CPU trend: 123.53%",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestEvaluateRejects(t *testing.T) {
	in := demoLine + "\n" + `{"cpu":"n/a","memoryUsedGB":1,"memoryTotalGB":2,"diskUsedGB":1,"diskTotalGB":2,"netRxMBps":0,"netTxMBps":0}` + "\nnot json\n"
	var out bytes.Buffer
	err := evaluate(strings.NewReader(in), &out, 10, false)
	if err == nil || !strings.Contains(err.Error(), "2 of 3") {
		t.Fatalf("evaluate() error = %v, want 2 of 3 rejected", err)
	}
	if !strings.Contains(out.String(), "line 2: invalid cpu") {
		t.Errorf("output missing validation message:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "line 3: decode") {
		t.Errorf("output missing decode message:\n%s", out.String())
	}
}

func TestEvaluateJSON(t *testing.T) {
	var out bytes.Buffer
	if err := evaluate(strings.NewReader(demoLine+"\n"), &out, 10, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"loadScore":33.3`) {
		t.Errorf("output = %s, want report JSON", out.String())
	}
}
