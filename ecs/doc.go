// Package ecs provides ECS adapters for showcase's outbound event stream.
//
// The primary adapter is [NewDonburiSink], which bridges viewer events
// (composition loading, item changes, mode toggles) into a [Donburi] world
// as typed events. Subscribe to [ViewerEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	viewer.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
