package ctxutil

import (
	"context"
	"testing"
)

func TestContextDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	if GetTraceData(ctx) != nil || GetSessionData(ctx) != nil {
		t.Fatalf("expected empty context to carry nothing")
	}
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t1", RequestID: "r1"})
	ctx = WithSessionData(ctx, &SessionData{SessionID: "s1"})
	if td := GetTraceData(ctx); td == nil || td.TraceID != "t1" || td.RequestID != "r1" {
		t.Fatalf("unexpected trace data %+v", td)
	}
	if sd := GetSessionData(ctx); sd == nil || sd.SessionID != "s1" {
		t.Fatalf("unexpected session data %+v", sd)
	}
}
