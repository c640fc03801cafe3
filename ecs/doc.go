// Package ecs provides ECS adapters for maskedit's session events.
//
// The primary adapter is [NewDonburiSink], which bridges editor events
// (strokes, redraws, layer and view changes, save and close) into a
// [Donburi] world as typed events. Subscribe to [EditorEventType] in your
// ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	session.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
