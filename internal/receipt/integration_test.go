package receipt_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-bot/internal/messaging"
	"github.com/zombor/receipt-bot/internal/receipt"
	"github.com/zombor/receipt-bot/internal/scanning"
)

var _ = Describe("Integration", func() {
	const (
		secret    = "integration-secret"
		token     = "integration-token"
		messageID = "468789577898262530"
	)

	var (
		lineAPI   *ghttp.Server
		ollamaAPI *ghttp.Server
		server    *receipt.Server
		replies   []string
	)

	pngBytes := func() []byte {
		var buf bytes.Buffer
		Expect(png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2)))).To(Succeed())
		return buf.Bytes()
	}

	captureReply := func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Text string `json:"text"`
			} `json:"messages"`
		}
		body, err := io.ReadAll(r.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(body, &req)).To(Succeed())
		for _, m := range req.Messages {
			replies = append(replies, m.Text)
		}
	}

	post := func() *http.Response {
		body := []byte(fmt.Sprintf(`{"destination":"Udeadbeef","events":[{"type":"message","mode":"active",`+
			`"timestamp":1735689600000,"source":{"type":"user","userId":"U0123456789abcdef"},`+
			`"webhookEventId":"evt-1","deliveryContext":{"isRedelivery":false},"replyToken":"rt-1",`+
			`"message":{"id":%q,"type":"image","quoteToken":"qt","contentProvider":{"type":"line"}}}]}`, messageID))
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)

		req := httptest.NewRequest(http.MethodPost, receipt.CallbackPath, bytes.NewReader(body))
		req.Header.Set(messaging.SignatureHeader, base64.StdEncoding.EncodeToString(mac.Sum(nil)))

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec.Result()
	}

	BeforeEach(func() {
		replies = nil
		lineAPI = ghttp.NewServer()
		ollamaAPI = ghttp.NewServer()

		line, err := messaging.NewLine(token, lineAPI.URL(), lineAPI.URL())
		Expect(err).NotTo(HaveOccurred())
		scanner, err := scanning.NewOllama(ollamaAPI.URL(), "llava")
		Expect(err).NotTo(HaveOccurred())

		server = receipt.NewServer(receipt.NewService(line, scanner), secret)
	})

	AfterEach(func() {
		lineAPI.Close()
		ollamaAPI.Close()
	})

	It("should download, scan and reply with the summary", func() {
		lineAPI.AppendHandlers(
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodGet, "/v2/bot/message/"+messageID+"/content"),
				ghttp.VerifyHeaderKV("Authorization", "Bearer "+token),
				ghttp.RespondWith(http.StatusOK, pngBytes(), http.Header{"Content-Type": []string{"image/png"}}),
			),
			ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/v2/bot/message/reply"),
				captureReply,
				ghttp.RespondWith(http.StatusOK, `{"sentMessages":[]}`),
			),
		)
		ollamaAPI.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
			"message": map[string]string{
				"role":    "assistant",
				"content": `{"date":"2025-01-01","amount":1200,"vendor":"Store A","items":["Tea","Bread"],"category":"消耗品費","invoice":"T1234567890123"}`,
			},
			"done": true,
		}))

		resp := post()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(replies).To(Equal([]string{
			"【解析完了】\n日付: 2025-01-01\n金額: ¥1,200\n店名: Store A\n科目: 消耗品費\n品目: Tea, Bread",
		}))
	})

	It("should reply with an error when the model answers in plain text", func() {
		lineAPI.AppendHandlers(
			ghttp.RespondWith(http.StatusOK, pngBytes(), http.Header{"Content-Type": []string{"image/png"}}),
			ghttp.CombineHandlers(captureReply, ghttp.RespondWith(http.StatusOK, `{"sentMessages":[]}`)),
		)
		ollamaAPI.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, map[string]any{
			"message": map[string]string{"role": "assistant", "content": "error"},
			"done":    true,
		}))

		resp := post()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(replies).To(HaveLen(1))
		Expect(replies[0]).To(Equal("エラーが発生しました: reading receipt: parsing model response: no JSON object found in response"))
	})

	It("should reply with an error when the image is gone", func() {
		lineAPI.AppendHandlers(
			ghttp.RespondWith(http.StatusNotFound, `{"message":"Not found"}`),
			ghttp.CombineHandlers(captureReply, ghttp.RespondWith(http.StatusOK, `{"sentMessages":[]}`)),
		)

		resp := post()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(replies).To(HaveLen(1))
		Expect(replies[0]).To(HavePrefix("エラーが発生しました: fetching image: "))
		Expect(ollamaAPI.ReceivedRequests()).To(BeEmpty())
	})
})
