// Package event is the change notification boundary between an editor
// session and its host.
//
// Events use hierarchical topics with dot notation:
//
//	editor.state.changed       - a transaction changed the document
//	editor.selection.changed   - the selection moved
//	editor.error               - a command was rejected or failed
//	editor.height.changed      - the host reported a new content height
//	search.count.changed       - the number of search matches changed
//	image.copied               - an image was copied or cut
//
// Subscriptions accept wildcard patterns: "*" matches one segment and
// "**" matches any number of segments, so "editor.**" receives every
// editor event.
//
// Delivery is synchronous. Publish runs each matching handler in priority
// order on the caller's goroutine and returns when all have finished. A
// handler that returns an error or panics is reported to the bus error
// handler; the remaining handlers still run.
//
//	bus := event.NewBus()
//	bus.Subscribe(events.TopicStateChanged, event.AsHandler(
//		func(ctx context.Context, e event.Event[events.StateChanged]) error {
//			log.Printf("%s changed the document", e.Payload.Command)
//			return nil
//		}))
package event
