// Package http provides the JSON response helpers shared by the framework's
// HTTP endpoints, modelled on Laravel's response() helper.
//
//	res := gohttp.NewResponse(w)
//	res.Success(status)                       // 200 {"data": status}
//	res.Error(http.StatusBadGateway, "down")  // 502 {"message": "down"}
//	res.NotFound()                            // 404 {"message": "Not found."}
//	res.ServiceUnavailable()                  // 503 {"message": "Service Unavailable."}
//
// Every body is an envelope: successful payloads sit under "data", failures
// carry a human-readable "message".
package http
