// Package intake implements a local stand-in for the hosted form services.
//
// It accepts the same multipart POST the submission client sends to
// /f/<form-id>, stores each lead in memory and streams new leads to
// websocket watchers. A reject switch makes every POST answer 503 so the
// client's fallback path can be exercised without touching the network.
package intake
