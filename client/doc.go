// Package client is a signed-request client for the Rent Dynamics REST
// API.
//
// Every call carries the x-rd signature headers computed by package
// rdsig. GET parameters are serialized with package query:
//
//	c, err := client.New(client.Config{
//	    APIKey:       os.Getenv("RD_API_KEY"),
//	    APISecretKey: os.Getenv("RD_API_SECRET"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := c.Login(ctx, "user", "password"); err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := c.Get(ctx, "/units", query.Options{
//	    Filters:  query.Filters{"floor": 2, "status": []string{"vacant", "notice"}},
//	    PageSize: 50,
//	})
//
// Responses are returned as-is whatever their status; the caller closes
// the body.
//
// # Configuration
//
// Config can be loaded from YAML with LoadConfig:
//
//	api_key: ${RD_API_KEY}
//	api_secret_key: ${RD_API_SECRET}
//	development: true
//	token_format: json
//	timeout: 15s
//	rate_limit: 10
//	rate_burst: 5
//
// # Observability
//
// Each call runs in an OpenTelemetry client span and is logged at debug
// level through log/slog. Secrets, nonces and tokens are never logged.
package client
