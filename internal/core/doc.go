// Package core provides the users service behind the data table demo.
//
// This package holds the domain logic independent of any UI or transport
// layer. Web handlers, the table session layer and tests use it without
// modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - User: the demo record, with [SampleUsers] as seed data.
//   - UserQuery: page, per-page, sort, search and filter parameters, read
//     from and written back to URLs by [ParseUserQuery] and [UserQuery.Encode].
//   - UserStore: [MemoryStore] for the demo, [PostgresStore] when a database
//     is configured.
//   - Service: the entry point for listing, exporting and deleting users.
//
// # Pagination
//
// [Service.ListUsers] returns a page together with a Laravel-style page
// descriptor built by [NewPagination]. The descriptor carries page URLs and
// a windowed link list with "..." gaps once there are many pages.
//
// # Export
//
// [Service.ExportUsers] streams every matching user, ignoring paging, into
// CSV, Excel or PDF. Exports above the configured row cap fail with
// [ErrExportTooLarge] before anything is written.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB004: Database errors (connections, deadlocks, timeouts)
//   - QRY001-QRY002: Query parameter errors (sort, dates)
//   - TBL001-TBL004: Table session and event errors
//   - EXP001-EXP003: Export errors
//
// # Maintenance
//
// [StartSweeper] runs periodic cleanup, such as expiring idle table sessions.
package core
