package trace

import (
	"fmt"
	"io"
	"sort"
)

// TraceSummary aggregates statistics from recorded events.
type TraceSummary struct {
	TotalEvents    int
	EventCounts    map[EventKind]int
	Deliveries     int
	Delivered      int
	Sold           int
	SoldByField    map[string]int
	MeanBuyerWait  float64
	MaxBuyerWait   uint64
	MeanFarmerWait float64
	Breaks         int
}

// Summarize computes aggregate statistics from events.
// Safe for nil or empty input (returns zero-value fields).
func Summarize(events []Event) *TraceSummary {
	summary := &TraceSummary{
		EventCounts: make(map[EventKind]int),
		SoldByField: make(map[string]int),
	}
	summary.TotalEvents = len(events)

	var buyerWait, farmerWait uint64
	var collections int
	for _, e := range events {
		summary.EventCounts[e.Kind]++
		switch e.Kind {
		case EventDelivery:
			summary.Deliveries++
			if n, ok := e.Payload[KeyTotal].(int); ok {
				summary.Delivered += n
			}
		case EventBought:
			summary.Sold++
			if field, ok := e.Payload[KeyField].(string); ok {
				summary.SoldByField[field]++
			}
			if w, ok := e.Payload[KeyWaitedTicks].(uint64); ok {
				buyerWait += w
				if w > summary.MaxBuyerWait {
					summary.MaxBuyerWait = w
				}
			}
		case EventCollected:
			collections++
			if w, ok := e.Payload[KeyWaitedTicks].(uint64); ok {
				farmerWait += w
			}
		case EventBreakStart:
			summary.Breaks++
		}
	}

	if summary.Sold > 0 {
		summary.MeanBuyerWait = float64(buyerWait) / float64(summary.Sold)
	}
	if collections > 0 {
		summary.MeanFarmerWait = float64(farmerWait) / float64(collections)
	}
	return summary
}

// Print writes the summary with event kinds and fields in sorted order.
func (s *TraceSummary) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Event Summary ===")
	fmt.Fprintf(w, "Events               : %d\n", s.TotalEvents)
	kinds := make([]string, 0, len(s.EventCounts))
	for k := range s.EventCounts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "  %-19s: %d\n", k, s.EventCounts[EventKind(k)])
	}
	fmt.Fprintf(w, "Deliveries           : %d (%d units)\n", s.Deliveries, s.Delivered)
	fmt.Fprintf(w, "Sold                 : %d\n", s.Sold)
	fields := make([]string, 0, len(s.SoldByField))
	for f := range s.SoldByField {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-19s: %d\n", f, s.SoldByField[f])
	}
	fmt.Fprintf(w, "Buyer Wait           : mean %.2f, max %d ticks\n", s.MeanBuyerWait, s.MaxBuyerWait)
	fmt.Fprintf(w, "Farmer Intake Wait   : mean %.2f ticks\n", s.MeanFarmerWait)
	fmt.Fprintf(w, "Farmer Breaks        : %d\n", s.Breaks)
}
