package watchcmder

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/restream/pkg/config"
	"github.com/papercomputeco/restream/pkg/reconstruct"
)

var _ = Describe("watch", func() {
	var (
		path    string
		updates chan *reconstruct.Result
		cmder   *watchCommander
		cancel  context.CancelFunc
		done    chan error
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "stream.sse")
		Expect(os.WriteFile(path, []byte("data: {\"text\":\"one\"}\n"), 0o644)).To(Succeed())

		updates = make(chan *reconstruct.Result, 16)
		cmder = &watchCommander{
			format:     config.FormatJSON,
			debounceMS: 20,
			out:        io.Discard,
			onUpdate:   func(r *reconstruct.Result) { updates <- r },
		}

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- cmder.run(ctx, path) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done, 2*time.Second).Should(Receive(BeNil()))
	})

	It("reconstructs once at startup", func() {
		var r *reconstruct.Result
		Eventually(updates, 2*time.Second).Should(Receive(&r))
		Expect(r.Content).To(Equal("one"))
	})

	It("reconstructs again after the file changes", func() {
		Eventually(updates, 2*time.Second).Should(Receive())

		Expect(os.WriteFile(path, []byte("data: {\"text\":\"one\"}\ndata: {\"text\":\" two\"}\n"), 0o644)).To(Succeed())

		Eventually(func() string {
			select {
			case r := <-updates:
				return r.Content
			default:
				return ""
			}
		}, 3*time.Second, 10*time.Millisecond).Should(Equal("one two"))
	})

	It("ignores other files in the directory", func() {
		Eventually(updates, 2*time.Second).Should(Receive())

		other := filepath.Join(filepath.Dir(path), "other.sse")
		Expect(os.WriteFile(other, []byte("data: {\"text\":\"x\"}\n"), 0o644)).To(Succeed())

		Consistently(updates, 300*time.Millisecond).ShouldNot(Receive())
	})
})
