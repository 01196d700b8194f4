// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app puts a browser front end on the sheet: routines and their
// checklists render server-side, with HTMX swapping partials on mutation.
// Each view corresponds to a template and handler:
//
//  1. Routine List: Server-rendered table with hx-get for entry preview
//  2. Practice View: Checklist partial, hx-post toggles completion per entry
//  3. Item Library: Sortable item table with inline notes editing
//  4. Chord Charts: Per-item chart grid rendered client-side with svguitar
//  5. Chart Autocreate: Upload form posting chord sheet images for recognition
//
// Core Components
//
//   - HTTP Server: reuses the server package's Router and middleware
//   - Repository Integration: Uses the same repositories as the CLI and TUI
//   - Session Management: Cookie-based sessions carrying the OAuth token reference
//   - Chart Rendering: Chart JSON payloads are handed to svguitar in the browser
//
// Routes
//
//	GET  /                       → Routine list view (requires auth)
//	GET  /auth/google            → OAuth initiation
//	GET  /auth/google/callback   → OAuth completion
//	GET  /routines/{id}          → Practice view for one routine
//	POST /routines/{id}/toggle   → HTMX partial: flip one entry's completion
//	POST /routines/{id}/reset    → HTMX partial: clear all completion marks
//	GET  /items                  → Item library view
//	GET  /items/{id}/charts      → HTMX partial: chart grid for one item
//	POST /items/{id}/autocreate  → Upload chord sheets, create charts
//
// Templates
//
//   - base.html: Layout with navigation, auth status
//   - routines.html: Table with hx-get on rows
//   - practice.html: Checklist partial with per-entry toggle buttons
//   - charts.html: Chart grid partial embedding svguitar render calls
//   - upload.html: Chord sheet upload form
//
// # State Management
//
// The spreadsheet stays the single source of truth. The web app holds:
//   - Session cookies: which stored token to use
//   - No in-process copies of sheet data beyond a single request
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server
//   - internal/server: routing, middleware, OAuth callback handling
//
// Implementation Tasks
//
//  1. HTTP server setup reusing internal/server route registration
//  2. Template structure with HTMX integration
//  3. Session middleware for auth state
//  4. Routine list and practice handlers over RoutineRepository
//  5. Entry toggle handler (HTMX partial)
//  6. Item library handler over ItemRepository
//  7. Chart grid handler emitting svguitar payloads from ChartRepository
//  8. Autocreate handler wiring uploads into the tasks engine
//  9. OAuth handlers wrapping the existing Google flow
//  10. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Fake spreadsheet store behind the repositories
//   - Validate HTMX headers and response structure
//   - Exercise toggle and reset partials against seeded routines
package web
