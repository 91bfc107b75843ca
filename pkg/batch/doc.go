// Package batch provides item batching functionality for efficient bulk
// writes.
//
// This package accumulates opaque items and delivers them to a callback in
// fixed-size groups, so scripts can write to slow sinks in bulk instead of
// one record at a time. It can be used independently of the rest of the
// library to build custom pipelines.
//
// # Usage
//
// Wrap the producing loop in Run; the remainder is flushed automatically
// when the loop ends:
//
//	err := batch.Run(saveRows, 2000, func(p *batch.Processor[Row]) error {
//	    for row := range rows {
//	        if err := p.Push(row); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	})
//
// For manual control, create a Processor with New and call Close when done.
// Close flushes whatever is buffered; a processor that never received an
// item never invokes the callback.
//
// # Error Handling
//
// Callback errors are returned unchanged from Push, Flush, Close and Run.
// The processor does not retry; after a failed flush the items stay
// buffered so the caller can decide whether to flush again or abandon the
// batch.
package batch
