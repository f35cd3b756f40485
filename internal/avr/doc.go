// Package avr builds a stateful device model on top of the raw
// connection layer. A Device translates inbound status messages into
// attribute changes and typed events, and exposes high level controls
// such as power, volume, source and playback. A Fleet aggregates many
// devices behind one event stream and keeps their state fresh with a
// background poller.
//
// The model never assumes a command succeeded. Controls send and
// return; attribute state only changes when the receiver reports it.
package avr
