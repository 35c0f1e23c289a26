// Package http provides a small fluent wrapper around net/http for one-shot
// requests whose responses are fully buffered in memory.
//
// This package is designed for programmatic use and provides:
//   - A chainable Requester for URL, method, headers, POST parameters and timeouts
//   - An immutable Response with charset detection from Content-Type
//   - Opt-in following of Location headers
//   - A Transport interface so the network layer can be replaced in tests
//
// Basic Usage:
//
//	resp, err := http.NewRequester().
//	    SetURL("http://localhost/test/test.php").
//	    SetMethod("get").
//	    AddHeader("apiKey", "boxresin").
//	    SetConnectTimeout(5 * time.Second).
//	    SetReadTimeout(10 * time.Second).
//	    Do(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Status: %d %s\n", resp.StatusCode(), resp.StatusMessage())
//	fmt.Println(resp.Text())
//
// Query Strings:
//
//	req := http.NewRequester().SetURLWithQuery("https://www.google.com", map[string]string{
//	    "q": "한글 test",
//	})
//	// req.URL() == "https://www.google.com?q=%ED%95%9C%EA%B8%80+test"
//
// POST Parameters:
//
// Parameters are only sent when the method is POST. They are written as
// key=value pairs joined with '&' in key order, without percent-encoding.
//
// Charsets:
//
// Response.Charset reports the upper-cased charset parameter of Content-Type.
// Response.Text decodes with it (UTF-8 when absent) and falls back to the raw
// bytes if it cannot; Response.TextWithCharset fails instead.
//
// Errors:
//
// A connect or read timeout is returned as *TimeoutError, which matches
// ErrTimeout with errors.Is. Other failures come back as net/http produced them.
//
// Thread Safety:
//
// A Requester is not safe for concurrent use. A Response is immutable and may
// be shared freely.
package http
