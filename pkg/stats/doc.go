// Package stats accumulates per-field, per-type statistics over a corpus of
// JSON documents.
//
// A Walker flattens each document into dotted field paths and feeds every
// scalar through an Accumulator into a Map. Maps built independently (one per
// input partition, say) are combined with a Reducer; the merge is associative
// and commutative, so partitions can be reduced in any order.
//
//	m := stats.NewMap()
//	w := stats.NewWalker(true)
//	for _, doc := range docs {
//		if err := w.Walk(doc, m); err != nil {
//			return err
//		}
//	}
//
// Numbers keep the integer/float distinction of their JSON literal, so a Value
// should come from Decode or FromAny rather than a float64-only parser.
package stats
