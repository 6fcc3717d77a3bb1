package core

// Entity is an identifier shared by value across the presentation and simulation domains
// Zero is never issued
type Entity uint64

// NoEntity is the zero entity, never returned by an allocator
const NoEntity Entity = 0
