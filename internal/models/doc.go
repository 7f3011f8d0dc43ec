// Package models defines the data types shared by the player core, its front ends and the persistence layer.
//
// The package contains two categories of types:
//
// 1. Value types describing what is playing
//   - [Source] : the active track reference and where it came from
//   - [TrackInfo] : tag metadata read from an audio file
//   - [File] : a user-selected file with its declared media type
//
// 2. Persistent entities
//   - [Upload] : record of a track uploaded during a session
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
