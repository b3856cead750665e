package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN no events
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero
	if summary.TotalEvents != 0 {
		t.Errorf("expected 0 total events, got %d", summary.TotalEvents)
	}
	if summary.Sold != 0 || summary.Delivered != 0 {
		t.Error("expected 0 sold and delivered")
	}
	if summary.MeanBuyerWait != 0 || summary.MaxBuyerWait != 0 {
		t.Error("expected 0 buyer wait values")
	}
	if len(summary.SoldByField) != 0 {
		t.Error("expected empty sold-by-field distribution")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with deliveries, collections, sales and a break
	events := []Event{
		{Tick: 1, Kind: EventDelivery, Payload: Payload{"pigs": 4, "cows": 6, KeyTotal: 10}},
		{Tick: 2, Kind: EventCollected, Payload: Payload{KeyWaitedTicks: uint64(2)}},
		{Tick: 5, Kind: EventCollected, Payload: Payload{KeyWaitedTicks: uint64(4)}},
		{Tick: 9, Kind: EventBought, Payload: Payload{KeyField: "pigs", KeyWaitedTicks: uint64(3)}},
		{Tick: 11, Kind: EventBought, Payload: Payload{KeyField: "pigs", KeyWaitedTicks: uint64(5)}},
		{Tick: 12, Kind: EventBought, Payload: Payload{KeyField: "cows", KeyWaitedTicks: uint64(1)}},
		{Tick: 20, Kind: EventBreakStart},
	}

	// WHEN summarized
	summary := Summarize(events)

	// THEN counts match
	if summary.TotalEvents != 7 {
		t.Errorf("expected 7 events, got %d", summary.TotalEvents)
	}
	if summary.Deliveries != 1 || summary.Delivered != 10 {
		t.Errorf("expected 1 delivery of 10 units, got %d of %d", summary.Deliveries, summary.Delivered)
	}
	if summary.Sold != 3 {
		t.Errorf("expected 3 sold, got %d", summary.Sold)
	}
	if summary.SoldByField["pigs"] != 2 || summary.SoldByField["cows"] != 1 {
		t.Errorf("unexpected sold-by-field distribution: %v", summary.SoldByField)
	}
	if summary.MeanBuyerWait != 3.0 {
		t.Errorf("expected mean buyer wait 3.0, got %f", summary.MeanBuyerWait)
	}
	if summary.MaxBuyerWait != 5 {
		t.Errorf("expected max buyer wait 5, got %d", summary.MaxBuyerWait)
	}
	if summary.MeanFarmerWait != 3.0 {
		t.Errorf("expected mean farmer wait 3.0, got %f", summary.MeanFarmerWait)
	}
	if summary.Breaks != 1 {
		t.Errorf("expected 1 break, got %d", summary.Breaks)
	}
	if summary.EventCounts[EventCollected] != 2 {
		t.Errorf("expected 2 collections, got %d", summary.EventCounts[EventCollected])
	}
}

func TestTraceSummary_Print_SortedSections(t *testing.T) {
	// GIVEN a trace with a delivery and two sales in different fields
	m := NewMemory()
	m.Record(1, ActorDelivery, 0, EventDelivery, Payload{KeyTotal: 10})
	m.Record(4, ActorBuyer, 2, EventBought, Payload{KeyField: "sheep", KeyWaitedTicks: uint64(3)})
	m.Record(6, ActorBuyer, 1, EventBought, Payload{KeyField: "cows", KeyWaitedTicks: uint64(1)})

	// WHEN the summary is printed
	var buf bytes.Buffer
	Summarize(m.Events()).Print(&buf)
	out := buf.String()

	// THEN totals appear and fields are listed alphabetically
	for _, want := range []string{"Events               : 3", "Deliveries           : 1 (10 units)", "Sold                 : 2", "mean 2.00, max 3 ticks"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "cows") > strings.Index(out, "sheep") {
		t.Errorf("fields not sorted:\n%s", out)
	}
}
