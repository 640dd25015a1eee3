package main

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"bitbucket.org/mmdatafocus/seller_backend/config"
	"bitbucket.org/mmdatafocus/seller_backend/workflow"
	"github.com/gin-gonic/gin"
)

const (
	maxOrderFiles    = 50
	maxOrderFileSize = 50 << 20  // 50MB per purchase-order form
	maxLedgerSize    = 100 << 20 // 100MB per settlement source file
)

// readMultipartFiles drains the given file headers into memory. Spreadsheets
// in this pipeline are small; buffering keeps the workflow layer free of
// multipart plumbing.
func readMultipartFiles(headers []*multipart.FileHeader, maxSize int64) ([]workflow.InputFile, error) {
	files := make([]workflow.InputFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxSize {
			return nil, &fileTooLargeError{name: fh.Filename}
		}
		src, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
		src.Close()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > maxSize {
			return nil, &fileTooLargeError{name: fh.Filename}
		}
		files = append(files, workflow.InputFile{Name: fh.Filename, Data: data})
	}
	return files, nil
}

type fileTooLargeError struct {
	name string
}

func (e *fileTooLargeError) Error() string {
	return "file too large: " + e.name
}

// orderProcessHandler ingests a batch of vendor purchase-order forms and
// writes the confirmation workbook plus one shipment manifest per
// (fulfillment center, expected delivery date) group.
func orderProcessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "파일이 업로드되지 않았습니다."})
			return
		}
		defer form.RemoveAll()

		headers := form.File["files"]
		if len(headers) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "파일이 업로드되지 않았습니다."})
			return
		}
		if len(headers) > maxOrderFiles {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "업로드 파일 수가 너무 많습니다."})
			return
		}

		files, err := readMultipartFiles(headers, maxOrderFileSize)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		result := workflow.ParseOrderFiles(logger, files)
		groups := workflow.GroupShipments(result.Shipments, invoiceGen)

		outputDir := config.OutputDir()
		if err := workflow.WriteOrderConfirmation(result.Orders, filepath.Join(outputDir, workflow.OrderConfirmationFilename)); err != nil {
			config.LogError(logger, "processing", "orderProcessHandler", "write order confirmation", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		shipmentFiles, err := workflow.WriteShipmentManifests(groups, outputDir)
		if err != nil {
			config.LogError(logger, "processing", "orderProcessHandler", "write shipment manifests", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		failures := result.Failures
		if failures == nil {
			failures = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"orderCount":    len(result.Orders),
				"shipmentCount": len(result.Shipments),
				"shipmentFiles": shipmentFiles,
				"failures":      failures,
			},
			"files": gin.H{
				"order":     workflow.OrderConfirmationFilename,
				"shipments": shipmentFiles,
			},
		})
	}
}

// settlementCalculateHandler joins one marketplace receiving report against a
// batch of wholesale ledgers and writes the settlement workbook.
func settlementCalculateHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "쿠팡 입고내역서와 루트로지스 파일을 모두 업로드해주세요."})
			return
		}
		defer form.RemoveAll()

		coupangHeaders := form.File["coupangFile"]
		ledgerHeaders := form.File["rootlogisFiles"]
		if len(coupangHeaders) != 1 || len(ledgerHeaders) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "쿠팡 입고내역서와 루트로지스 파일을 모두 업로드해주세요."})
			return
		}
		if len(ledgerHeaders) > maxOrderFiles {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "업로드 파일 수가 너무 많습니다."})
			return
		}

		coupangFiles, err := readMultipartFiles(coupangHeaders, maxLedgerSize)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		ledgerFiles, err := readMultipartFiles(ledgerHeaders, maxLedgerSize)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}

		recv, err := workflow.ParseReceivingReport(coupangFiles[0].Data)
		if err != nil {
			config.LogError(logger, "processing", "settlementCalculateHandler", "parse receiving report", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		rows, failures := workflow.ParseLedgerFiles(logger, ledgerFiles)
		if len(rows) == 0 {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": workflow.ErrNoLedgerData.Error()})
			return
		}

		result, err := workflow.CalculateSettlement(recv, rows)
		if err != nil {
			config.LogError(logger, "processing", "settlementCalculateHandler", "calculate settlement", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		filename := workflow.SettlementFilename(time.Now().Format("2006-01-02"))
		if err := workflow.WriteSettlementWorkbook(result, filepath.Join(config.OutputDir(), filename)); err != nil {
			config.LogError(logger, "processing", "settlementCalculateHandler", "write settlement workbook", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		if failures == nil {
			failures = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"data":     result,
			"failures": failures,
			"filename": filename,
		})
	}
}

// downloadHandler serves a previously generated workbook out of the output
// directory. The filename is flattened to its base to keep requests inside
// that directory.
func downloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := filepath.Base(c.Param("filename"))
		if name == "." || name == ".." || name == string(filepath.Separator) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "파일을 찾을 수 없습니다."})
			return
		}
		path := filepath.Join(config.OutputDir(), name)
		if !fileExists(path) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "파일을 찾을 수 없습니다."})
			return
		}
		c.FileAttachment(path, name)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
