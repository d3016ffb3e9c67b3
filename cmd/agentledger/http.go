// Copyright 2026 The go-agentledger Authors
// This file is part of the go-agentledger library.
//
// The go-agentledger library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-agentledger library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-agentledger library. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/cors"
)

// newHTTPHandler serves JSON-RPC over HTTP and upgrades websocket requests on
// the same endpoint, so that log subscriptions are available to browsers too.
func newHTTPHandler(srv *rpc.Server, corsDomains []string) http.Handler {
	ws := srv.WebsocketHandler(corsDomains)
	httpHandler := newCorsHandler(srv, corsDomains)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWebsocket(r) {
			ws.ServeHTTP(w, r)
			return
		}
		httpHandler.ServeHTTP(w, r)
	})
}

func newCorsHandler(srv http.Handler, allowedOrigins []string) http.Handler {
	// disable CORS support if user has not specified a custom CORS configuration
	if len(allowedOrigins) == 0 {
		return srv
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodGet},
		AllowedHeaders: []string{"*"},
		MaxAge:         600,
	})
	return c.Handler(srv)
}

// isWebsocket checks the header of an http request for a websocket upgrade request.
func isWebsocket(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
