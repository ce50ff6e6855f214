// Command cdn-origin runs the toy origin server (C8): an echo loop that
// answers every CdnRequest with an OriginResponse for the same key.
package main

import (
	"flag"
	"log"

	"github.com/tsunrise/delayed-hits/cdn"
)

func main() {
	listen := flag.String("listen", "", "port to listen on, e.g. 9000")
	flag.Parse()

	endpoint, err := cdn.ParseEndpoint(*listen)
	if err != nil {
		log.Fatalf("cdn-origin: %v", err)
	}
	if !endpoint.Server {
		log.Fatalf("cdn-origin: only server mode (<port>) is supported; got client endpoint %s", endpoint.Addr())
	}

	if err := cdn.ListenOrigin(endpoint.Addr()); err != nil {
		log.Fatalf("cdn-origin: %v", err)
	}
}
