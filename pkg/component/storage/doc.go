// Package storage defines the abstractions shared by storage backends.
//
// Every backend client (PostgreSQL, Redis, Milvus) implements the Client
// interface so that lifecycle and health handling stay uniform:
//
//	client, err := postgres.New(opts)
//	if err != nil {
//	    log.Fatalf("failed to connect: %v", err)
//	}
//	defer client.Close()
//
// Applications holding several backends register them with a Manager and
// drive health checks and shutdown through it:
//
//	mgr := storage.NewManager()
//	mgr.MustRegister("postgres-primary", pgClient)
//	mgr.MustRegister("redis-cache", cacheClient)
//
//	for name, status := range mgr.HealthCheckAll(ctx) {
//	    if !status.Healthy {
//	        log.Printf("%s: unhealthy - %v", name, status.Error)
//	    }
//	}
//
//	defer mgr.CloseAll()
//
// Errors raised by backends wrap the sentinel values in errors.go; use
// errors.Is against ErrNotConnected, ErrTimeout and friends, or GetError
// to reach the structured details.
//
// The Manager is safe for concurrent use. Client implementations document
// their own thread-safety guarantees.
package storage
