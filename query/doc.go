// Package query renders list options into the API's query string dialect.
//
// The dialect is fixed by the server and is not a general URL query
// encoder. Filters are flattened into a single filters= parameter:
//
//	query.Stringify(query.Options{
//	    Filters: query.Filters{
//	        "age":  []int{20, 21},
//	        "unit": query.Filters{"floor": 2},
//	        "name": "bob",
//	    },
//	    Include:  []string{"leases"},
//	    PageSize: 50,
//	})
//	// ?filters=age__in=20,21|name=bob|unit__floor=2&include=leases&pageSize=50
//
// Rules:
//
//   - a slice value becomes field__in=a,b,c; an empty slice is dropped;
//   - a nested map becomes field__sub=value terms;
//   - nil and empty-string values are dropped at every level;
//   - page and pageSize are dropped when zero, distinct when false;
//   - an empty result is "" rather than "?".
//
// Values are not percent-encoded. The '|' separator is kept literal in the
// signed URL and sent as %7C on the wire.
package query
