package main

import "message-feed/internal"

// Config aliases the shared process configuration so the viewer can load
// the same variables.
type Config = internal.Config
