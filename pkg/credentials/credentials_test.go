package credentials_test

import (
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/credentials"
)

var _ = Describe("Manager", func() {
	var mgr *credentials.Manager

	BeforeEach(func() {
		var err error
		mgr, err = credentials.NewManager(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := mgr.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(BeEmpty())
		})
	})

	Describe("SetKey and GetKey", func() {
		It("round-trips a stored key", func() {
			Expect(mgr.SetKey("anthropic", "sk-ant-test")).To(Succeed())

			key, err := mgr.GetKey("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-ant-test"))
		})

		It("returns empty for an unknown provider", func() {
			key, err := mgr.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})

		It("writes the file with 0600 permissions", func() {
			Expect(mgr.SetKey("openai", "sk-test")).To(Succeed())

			info, err := os.Stat(mgr.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})
	})

	Describe("RemoveKey", func() {
		It("deletes a stored credential", func() {
			Expect(mgr.SetKey("anthropic", "sk-ant-test")).To(Succeed())
			Expect(mgr.RemoveKey("anthropic")).To(Succeed())

			key, err := mgr.GetKey("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("ListProviders", func() {
		It("returns stored providers sorted", func() {
			Expect(mgr.SetKey("openai", "a")).To(Succeed())
			Expect(mgr.SetKey("anthropic", "b")).To(Succeed())

			providers, err := mgr.ListProviders()
			Expect(err).NotTo(HaveOccurred())
			Expect(providers).To(Equal([]string{"anthropic", "openai"}))
		})
	})

	Describe("Resolve", func() {
		It("prefers the environment variable over the stored key", func() {
			Expect(mgr.SetKey("anthropic", "stored-key")).To(Succeed())
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "env-key")

			key, err := mgr.Resolve("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("env-key"))
		})

		It("falls back to the stored key when the env var is unset", func() {
			GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
			Expect(mgr.SetKey("anthropic", "stored-key")).To(Succeed())

			key, err := mgr.Resolve("anthropic")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("stored-key"))
		})

		It("resolves empty for providers that need no key", func() {
			key, err := mgr.Resolve("ollama")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})
	})

	Describe("provider helpers", func() {
		It("knows the supported providers", func() {
			Expect(credentials.IsSupportedProvider("anthropic")).To(BeTrue())
			Expect(credentials.IsSupportedProvider("openai")).To(BeTrue())
			Expect(credentials.IsSupportedProvider("bedrock")).To(BeFalse())
		})

		It("maps providers to env vars", func() {
			Expect(credentials.EnvVarForProvider("anthropic")).To(Equal("ANTHROPIC_API_KEY"))
			Expect(credentials.EnvVarForProvider("openai")).To(Equal("OPENAI_API_KEY"))
			Expect(credentials.EnvVarForProvider("unknown")).To(BeEmpty())
		})
	})
})
