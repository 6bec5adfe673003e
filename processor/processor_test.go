package processor_test

import (
	"errors"
	"iter"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/tally/hooking"
	"github.com/sarchlab/tally/input"
	"github.com/sarchlab/tally/instruction"
	"github.com/sarchlab/tally/output"
	"github.com/sarchlab/tally/processor"
	"github.com/sarchlab/tally/tally"
)

type sliceSource []string

func (s sliceSource) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, line := range s {
			if !yield(line, nil) {
				return
			}
		}
	}
}

type failingSource struct {
	lines []string
	err   error
}

func (s failingSource) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, line := range s.lines {
			if !yield(line, nil) {
				return
			}
		}

		yield("", s.err)
	}
}

var _ = Describe("Processor", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
		table    *tally.Table
		p        *processor.Processor
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
		table = tally.NewTable()
		p = processor.New(table, sink)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("when processing a record line", func() {
		It("should update the table and return nothing", func() {
			rsp, err := p.Process("record:Taylor Swift,Cruel Summer")

			Expect(err).ToNot(HaveOccurred())
			Expect(rsp).To(BeEmpty())
			Expect(table.Count("Taylor Swift", "Cruel Summer")).To(Equal(1))

			leader, _ := table.Leader("Taylor Swift")
			Expect(leader).To(Equal("Cruel Summer"))
		})

		It("should reject arguments without a comma", func() {
			_, err := p.Process("record:Taylor Swift")

			Expect(err).To(MatchError(instruction.ErrMalformedLine))
			Expect(table.Artists()).To(BeEmpty())
		})

		It("should invoke record hooks", func() {
			var details []processor.RecordDetail
			p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(processor.HookPosRecord))
				Expect(ctx.Domain).To(BeIdenticalTo(p))
				details = append(details, ctx.Detail.(processor.RecordDetail))
			}))

			Expect(p.Record("A,X")).To(Succeed())
			Expect(p.Record("A,X")).To(Succeed())

			Expect(details).To(Equal([]processor.RecordDetail{
				{Artist: "A", Song: "X", Count: 1},
				{Artist: "A", Song: "X", Count: 2},
			}))
		})
	})

	Context("when processing a top line", func() {
		It("should answer with the leader", func() {
			table.Record("Taylor Swift", "Cruel Summer")
			sink.EXPECT().WriteLine("Taylor Swift:Cruel Summer")

			rsp, err := p.Process("top:Taylor Swift")

			Expect(err).ToNot(HaveOccurred())
			Expect(rsp).To(Equal("Taylor Swift:Cruel Summer"))
		})

		It("should answer artists without records", func() {
			sink.EXPECT().WriteLine("Adele:NO RECORDS YET")

			rsp, err := p.Top("Adele")

			Expect(err).ToNot(HaveOccurred())
			Expect(rsp).To(Equal("Adele:NO RECORDS YET"))
		})

		It("should return the response when the sink fails", func() {
			writeErr := errors.New("disk full")
			sink.EXPECT().WriteLine("Adele:NO RECORDS YET").Return(writeErr)

			rsp, err := p.Top("Adele")

			Expect(err).To(MatchError(writeErr))
			Expect(rsp).To(Equal("Adele:NO RECORDS YET"))
		})

		It("should invoke top hooks with the response", func() {
			sink.EXPECT().WriteLine(gomock.Any())

			var detail processor.TopDetail
			p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == processor.HookPosTop {
					detail = ctx.Detail.(processor.TopDetail)
				}
			}))

			_, err := p.Top("Adele")

			Expect(err).ToNot(HaveOccurred())
			Expect(detail).To(Equal(processor.TopDetail{
				Artist:   "Adele",
				Response: "Adele:NO RECORDS YET",
			}))
		})
	})

	It("should reject unknown instructions", func() {
		_, err := p.Process("play:Adele")

		Expect(err).To(MatchError(instruction.ErrInvalidInstruction))
	})

	Context("when running", func() {
		It("should process lines in order", func() {
			gomock.InOrder(
				sink.EXPECT().WriteLine("A:X"),
				sink.EXPECT().WriteLine("A:Y"),
			)

			err := p.Run(sliceSource{
				"record:A,X",
				"top:A",
				"record:A,Y",
				"record:A,Y",
				"top:A",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(p.NumLines()).To(Equal(5))
		})

		It("should stop at the first invalid instruction", func() {
			err := p.Run(sliceSource{
				"record:A,X",
				"play:A",
				"top:A",
			})

			Expect(err).To(MatchError(instruction.ErrInvalidInstruction))
			Expect(err.Error()).To(HavePrefix("line 2: "))
			Expect(p.NumLines()).To(Equal(2))
		})

		It("should stop when the source fails", func() {
			srcErr := errors.New("read failure")

			err := p.Run(failingSource{lines: []string{"record:A,X"}, err: srcErr})

			Expect(err).To(MatchError(srcErr))
			Expect(table.Count("A", "X")).To(Equal(1))
		})

		It("should stop when the sink fails", func() {
			sink.EXPECT().WriteLine("A:X").Return(errors.New("disk full"))

			err := p.Run(sliceSource{"record:A,X", "top:A", "top:B"})

			Expect(err).To(HaveOccurred())
			Expect(p.NumLines()).To(Equal(2))
		})

		It("should invoke line hooks before each line", func() {
			var numbers []int
			p.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == processor.HookPosLine {
					numbers = append(numbers, ctx.Detail.(processor.LineDetail).Number)
				}
			}))

			Expect(p.Run(sliceSource{"record:A,X", "record:A,Y"})).To(Succeed())

			Expect(numbers).To(Equal([]int{1, 2}))
		})
	})
})

var _ = Describe("Processor with files", func() {
	var (
		dir        string
		inputPath  string
		outputPath string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		inputPath = filepath.Join(dir, "input.txt")
		outputPath = filepath.Join(dir, "output.txt")
	})

	run := func(lines ...string) error {
		content := strings.Join(lines, "\n") + "\n"
		Expect(os.WriteFile(inputPath, []byte(content), 0o644)).To(Succeed())

		sink, err := output.NewFileSink(outputPath)
		Expect(err).ToNot(HaveOccurred())

		p := processor.New(tally.NewTable(), sink)

		return p.Run(input.NewReader(inputPath))
	}

	readOutput := func() string {
		content, err := os.ReadFile(outputPath)
		Expect(err).ToNot(HaveOccurred())

		return string(content)
	}

	It("should produce the example output", func() {
		err := run(
			"record:Taylor Swift,Cruel Summer",
			"record:Michael Jackson,Beat it",
			"top:Taylor Swift",
			"top:Michael Jackson",
		)

		Expect(err).ToNot(HaveOccurred())
		Expect(readOutput()).To(Equal(
			"Taylor Swift:Cruel Summer\nMichael Jackson:Beat it\n"))
	})

	It("should let a song overtake after a tie", func() {
		err := run("record:A,X", "record:A,Y", "record:A,Y", "top:A")

		Expect(err).ToNot(HaveOccurred())
		Expect(readOutput()).To(Equal("A:Y\n"))
	})

	It("should write the no records response", func() {
		err := run("top:Adele")

		Expect(err).ToNot(HaveOccurred())
		Expect(readOutput()).To(Equal("Adele:NO RECORDS YET\n"))
	})

	It("should keep output written before an invalid instruction", func() {
		err := run("record:A,X", "top:A", "skip:A", "top:A")

		Expect(err).To(MatchError(instruction.ErrInvalidInstruction))
		Expect(readOutput()).To(Equal("A:X\n"))
	})

	It("should handle songs longer than a megabyte", func() {
		song := strings.Repeat("la", 1<<20)

		err := run("record:A,"+song, "top:A")

		Expect(err).ToNot(HaveOccurred())
		Expect(readOutput()).To(Equal("A:" + song + "\n"))
	})

	It("should fail on a missing input file", func() {
		sink, err := output.NewFileSink(outputPath)
		Expect(err).ToNot(HaveOccurred())
		p := processor.New(tally.NewTable(), sink)

		err = p.Run(input.NewReader(filepath.Join(dir, "missing.txt")))

		Expect(err).To(MatchError(input.ErrNotFound))
		Expect(readOutput()).To(BeEmpty())
	})
})
