package servecmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	servecmder "github.com/mendellabsco/mendel/cmd/mendel/serve"
)

var _ = Describe("ServeCmd", func() {
	It("has the expected command properties", func() {
		cmd := servecmder.NewServeCmd()

		Expect(cmd.Use).To(Equal("serve"))
		Expect(cmd.Short).NotTo(BeEmpty())
		Expect(cmd.Long).To(ContainSubstring("/v1/ask"))
	})

	It("registers the listen flag with its shorthand", func() {
		cmd := servecmder.NewServeCmd()

		listen := cmd.Flags().Lookup("listen")
		Expect(listen).NotTo(BeNil())
		Expect(listen.Shorthand).To(Equal("l"))
		Expect(listen.DefValue).To(Equal(":8082"))
	})

	It("registers the pipeline flags", func() {
		cmd := servecmder.NewServeCmd()

		for _, name := range []string{
			"store-provider",
			"embedding-model",
			"llm-provider",
			"top",
		} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), "missing flag %s", name)
		}
	})
})
