package scanning

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server  *ghttp.Server
		scanner *Ollama
		data    *ReceiptData
		err     error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		scanner, err = NewOllama(server.URL()+"/", "llava")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		data, err = scanner.ScanReceipt(context.Background(), encodePNG(), "image/png")
	})

	When("the model returns a receipt", func() {
		var request ollamaChatRequest

		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &request)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"vendor":"Store A","amount":540}`},
					Done:    true,
				}),
			))
		})

		It("should parse the response", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(data.Vendor).To(Equal("Store A"))
			Expect(*data.Amount).To(Equal(540.0))
		})

		It("should request JSON output with the image attached", func() {
			Expect(request.Model).To(Equal("llava"))
			Expect(request.Format).To(Equal("json"))
			Expect(request.Stream).To(BeFalse())
			Expect(request.Messages).To(HaveLen(1))
			Expect(request.Messages[0].Content).To(Equal(receiptScanPrompt))
			Expect(request.Messages[0].Images).To(HaveLen(1))
		})
	})

	When("the model returns text that is not JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
				Message: ollamaMessage{Role: "assistant", Content: "error"},
				Done:    true,
			}))
		})

		It("returns a parse error", func() {
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(data).To(BeNil())
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the status and body", func() {
			Expect(err).To(MatchError(ContainSubstring("status 500")))
			Expect(err).To(MatchError(ContainSubstring("model not loaded")))
		})

		It("is not a parse error", func() {
			var parseErr *ParseError
			Expect(errors.As(err, &parseErr)).To(BeFalse())
		})
	})
})
