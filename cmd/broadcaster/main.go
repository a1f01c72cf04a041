package main

import (
	"encoding/json"
	"log"
	"os"

	stan "github.com/nats-io/stan.go"
)

// Dev tool: wraps an order JSON from stdin into a broadcast envelope
// and publishes it to a storefront topic.
func main() {
	clusterID := getenv("STAN_CLUSTER_ID", "console-cluster")
	clientID := getenv("STAN_PUB_ID", "console-broadcaster")
	natsURL := getenv("NATS_URL", "nats://localhost:4222")
	topic := getenv("BROADCAST_TOPIC", "storefront.demo")
	kind := getenv("BROADCAST_EVENT", "order.created")

	sc, err := stan.Connect(clusterID, clientID, stan.NatsURL(natsURL))
	if err != nil {
		log.Fatalf("stan connect: %v", err)
	}
	defer sc.Close()

	var data json.RawMessage
	dec := json.NewDecoder(os.Stdin)
	if err := dec.Decode(&data); err != nil {
		log.Fatalf("read json from stdin: %v", err)
	}
	envelope := struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{Event: kind, Data: data}
	b, err := json.Marshal(envelope)
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}
	if err := sc.Publish(topic, b); err != nil {
		log.Fatalf("publish: %v", err)
	}
	log.Printf("published %d bytes to %s", len(b), topic)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
