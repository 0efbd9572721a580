package eventstream_test

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/eventstream"
)

var _ = Describe("Event", func() {
	It("fills the envelope", func() {
		event := eventstream.NewGenerationEvent("sess-1", "groq", "llama-3.3-70b-versatile", 321,
			[]string{"openai", "groq"}, 1500*time.Millisecond)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal("sitesmith.generation.completed"))
		Expect(uuid.Validate(event.EventID)).To(Succeed())
		Expect(event.EmittedAt).To(BeTemporally("~", time.Now(), time.Second))
		Expect(event.DurationMs).To(Equal(int64(1500)))
	})

	It("marshals with snake_case keys and omits an empty session", func() {
		event := eventstream.NewGenerationEvent("", "openai", "gpt-4o", 10, []string{"openai"}, time.Second)

		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("event_id"))
		Expect(decoded).To(HaveKey("tokens_used"))
		Expect(decoded).To(HaveKeyWithValue("attempted", []any{"openai"}))
		Expect(decoded).NotTo(HaveKey("session_id"))
	})
})
