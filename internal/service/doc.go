// Package service holds the mind-map business rules that sit between the
// HTTP handlers, editor sessions and the sqlite repository.
//
// MindmapService validates records before they reach storage, lists maps per
// project, converts documents through the codec package on import and
// export, and offers SaveDocument, which writes only the document column and
// backs the autosave callback of every editor session.
//
// Every mutation is announced on an EventBus. The hub package forwards those
// events to Server-Sent Events clients; a subscriber that falls behind loses
// events rather than blocking the publisher.
package service
