package boshlite

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"boshladle/internal/config"
)

const ec2Namespace = "http://ec2.amazonaws.com/doc/2016-11-15/"

// actionCounter counts requests per EC2 action.
type actionCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *actionCounter) inc(action string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[action]++
}

func (c *actionCounter) get(action string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[action]
}

// newEC2TestServer routes EC2 query requests by their Action parameter.
func newEC2TestServer(t *testing.T, handlers map[string]func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *actionCounter) {
	t.Helper()
	calls := &actionCounter{counts: map[string]int{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("failed to parse form: %v", err)
		}
		action := r.PostForm.Get("Action")
		calls.inc(action)
		if h, ok := handlers[action]; ok {
			w.Header().Set("Content-Type", "text/xml;charset=UTF-8")
			h(w, r)
			return
		}
		t.Errorf("unexpected action: %s", action)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `<Response><Errors><Error><Code>InvalidAction</Code><Message>nope</Message></Error></Errors><RequestID>r</RequestID></Response>`)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

// isolateAWSEnv keeps the developer's AWS profile out of the test.
func isolateAWSEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_ENDPOINT_URL", "")
	t.Setenv("AWS_ENDPOINT_URL_EC2", "")
}

func TestNewClient_SpinupAgainstEndpoint(t *testing.T) {
	isolateAWSEnv(t)

	srv, calls := newEC2TestServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"DescribeImages": func(w http.ResponseWriter, r *http.Request) {
			if got := r.PostForm.Get("ImageId.1"); got != "ami-12345678" {
				t.Errorf("ImageId.1 = %q, want %q", got, "ami-12345678")
			}
			fmt.Fprintf(w, `<DescribeImagesResponse xmlns=%q>
  <requestId>req-1</requestId>
  <imagesSet>
    <item>
      <imageId>ami-12345678</imageId>
      <name>boshlite-9000</name>
      <rootDeviceName>/dev/sda1</rootDeviceName>
    </item>
  </imagesSet>
</DescribeImagesResponse>`, ec2Namespace)
		},
		"RunInstances": func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.Header.Get("Authorization"), "AWS4-HMAC-SHA256 Credential=qux/") {
				t.Errorf("expected request signed with access key qux, got %q", r.Header.Get("Authorization"))
			}
			want := map[string]string{
				"SubnetId":          "subnet-deadbeef",
				"KeyName":           "ham-and-pears",
				"InstanceType":      "miniscule",
				"ImageId":           "ami-12345678",
				"MinCount":          "1",
				"MaxCount":          "1",
				"SecurityGroupId.1": "sg-where-am-i",
			}
			for k, v := range want {
				if got := r.PostForm.Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
			fmt.Fprintf(w, `<RunInstancesResponse xmlns=%q>
  <requestId>req-2</requestId>
  <reservationId>r-1</reservationId>
  <ownerId>123456789012</ownerId>
  <instancesSet>
    <item>
      <instanceId>i-0abc</instanceId>
      <imageId>ami-12345678</imageId>
      <instanceState><code>0</code><name>pending</name></instanceState>
      <privateIpAddress>10.0.16.4</privateIpAddress>
      <subnetId>subnet-deadbeef</subnetId>
    </item>
  </instancesSet>
</RunInstancesResponse>`, ec2Namespace)
		},
	})

	ctx := context.Background()
	client, err := NewClient(ctx, config.Credentials{AccessKeyID: "qux", SecretAccessKey: "barz"}, "us-east-1", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	inst, err := Spinup(ctx, client, "subnet-deadbeef", "myBOSHLite", "sg-where-am-i", "ham-and-pears", "miniscule", 77,
		WithAMI("ami-12345678"))
	if err != nil {
		t.Fatalf("Spinup failed: %v", err)
	}

	if inst.ID != "i-0abc" {
		t.Errorf("ID = %q, want %q", inst.ID, "i-0abc")
	}
	if inst.State != "pending" {
		t.Errorf("State = %q, want %q", inst.State, "pending")
	}
	if calls.get("RunInstances") != 1 {
		t.Errorf("RunInstances called %d times, want 1", calls.get("RunInstances"))
	}
}

func TestNewClient_RunInstancesFailureNotRetried(t *testing.T) {
	isolateAWSEnv(t)

	srv, calls := newEC2TestServer(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"DescribeImages": func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<DescribeImagesResponse xmlns=%q><requestId>req-1</requestId><imagesSet><item><imageId>ami-1</imageId></item></imagesSet></DescribeImagesResponse>`, ec2Namespace)
		},
		"RunInstances": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprint(w, `<Response><Errors><Error><Code>Unavailable</Code><Message>try later</Message></Error></Errors><RequestID>req-2</RequestID></Response>`)
		},
	})

	ctx := context.Background()
	client, err := NewClient(ctx, config.Credentials{AccessKeyID: "qux", SecretAccessKey: "barz"}, "us-east-1", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = Spinup(ctx, client, "subnet-1", "n", "sg-1", "k", "m3.xlarge", 40, WithAMI("ami-1"))
	if err == nil {
		t.Fatal("expected error from failed RunInstances")
	}
	if !strings.Contains(err.Error(), "failed to launch instance") {
		t.Errorf("expected launch failure context, got %v", err)
	}
	if calls.get("RunInstances") != 1 {
		t.Errorf("RunInstances called %d times, want exactly 1", calls.get("RunInstances"))
	}
}
