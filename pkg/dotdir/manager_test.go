package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var mgr *dotdir.Manager

	BeforeEach(func() {
		mgr = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("uses the override directory when provided", func() {
			override := filepath.Join(GinkgoT().TempDir(), "custom-mendel")

			target, err := mgr.Target(override)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(override))

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("creates the override directory if missing", func() {
			override := filepath.Join(GinkgoT().TempDir(), "nested", "dir")

			target, err := mgr.Target(override)
			Expect(err).NotTo(HaveOccurred())

			info, err := os.Stat(target)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("prefers a local .mendel directory over home", func() {
			tmp := GinkgoT().TempDir()
			Expect(os.MkdirAll(filepath.Join(tmp, ".mendel"), 0o755)).To(Succeed())

			cwd, err := os.Getwd()
			Expect(err).NotTo(HaveOccurred())
			Expect(os.Chdir(tmp)).To(Succeed())
			DeferCleanup(func() { Expect(os.Chdir(cwd)).To(Succeed()) })

			target, err := mgr.Target("")
			Expect(err).NotTo(HaveOccurred())

			resolved, err := filepath.EvalSymlinks(target)
			Expect(err).NotTo(HaveOccurred())
			expected, err := filepath.EvalSymlinks(filepath.Join(tmp, ".mendel"))
			Expect(err).NotTo(HaveOccurred())
			Expect(resolved).To(Equal(expected))
		})
	})
})
