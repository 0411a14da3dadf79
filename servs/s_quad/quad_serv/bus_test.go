package quad_serv

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rskv-p/qtree/servs/s_quad/quad_api"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	opts := natsserver.DefaultTestOptions
	opts.Port = -1
	ns := natsserver.RunServer(&opts)
	t.Cleanup(ns.Shutdown)
	return ns
}

func TestBusEndpoints(t *testing.T) {
	ns := runServer(t)
	s := New(testConfig(), nil, nil)
	require.NoError(t, s.StartBus(ns.ClientURL()))
	defer s.Stop()

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	req := func(subject string, v any) *nats.Msg {
		data, _ := json.Marshal(v)
		msg, err := nc.Request("qtree."+subject, data, 2*time.Second)
		require.NoError(t, err)
		return msg
	}

	msg := req(quad_api.SubjectBuild, quad_api.BuildRequest{Name: "b", Pixels: sample})
	var built quad_api.BuildResponse
	require.NoError(t, json.Unmarshal(msg.Data, &built))
	assert.Equal(t, 5, built.Tree.Nodes)

	msg = req(quad_api.SubjectPixels, quad_api.PixelsRequest{Name: "b", Level: 1})
	var pixels quad_api.PixelsResponse
	require.NoError(t, json.Unmarshal(msg.Data, &pixels))
	assert.Len(t, pixels.Nodes, 4)

	msg = req(quad_api.SubjectPixels, quad_api.PixelsRequest{Name: "zzz"})
	assert.Equal(t, "404", msg.Header.Get("Nats-Service-Error-Code"))

	msg, err = nc.Request("qtree."+quad_api.SubjectMatch, []byte("{"), 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "400", msg.Header.Get("Nats-Service-Error-Code"))
}

func TestEmbeddedServer(t *testing.T) {
	cfg := testConfig()
	cfg.NATS.Port = -1
	s := New(cfg, nil, nil)

	url, err := s.StartEmbedded()
	require.NoError(t, err)
	require.NoError(t, s.StartBus(url))

	nc, err := nats.Connect(url)
	require.NoError(t, err)
	defer nc.Close()

	msg, err := nc.Request("qtree."+quad_api.SubjectList, nil, 2*time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"trees":[]}`, string(msg.Data))

	require.NoError(t, s.Stop())
	assert.False(t, s.ns.Running())
}

func TestRecoveredEndpoint(t *testing.T) {
	ns := runServer(t)
	s := New(testConfig(), nil, nil)
	defer s.Stop()

	nc, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer nc.Close()
	require.NoError(t, s.Serve(nc))

	require.NoError(t, s.micro.AddEndpoint("boom", s.recovered("boom", func(req micro.Request) {
		panic("kaboom")
	})))

	msg, err := nc.Request("boom", nil, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "500", msg.Header.Get("Nats-Service-Error-Code"))
}
