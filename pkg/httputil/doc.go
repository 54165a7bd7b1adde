// Package httputil provides HTTP plumbing for the generation service client.
//
// # Overview
//
//   - [Retry]: automatic retry with exponential backoff
//   - [CheckStatus]: maps HTTP status codes onto coded errors
//   - [NewHTTPClient]: an http.Client with the default request timeout
//
// # Retry
//
// [Retry] re-runs an operation only when it fails with a [RetryableError].
// Transport failures and 5xx responses are retryable; 4xx responses are not:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Configuration
//
//   - Default timeout: 60 seconds
//   - Max attempts: 3
//   - Base backoff: 1 second, doubling
package httputil
