package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/proposely/internal/logger"
	"github.com/ignatzorin/proposely/internal/models"
	"github.com/ignatzorin/proposely/internal/pkg/apperror"
	"github.com/ignatzorin/proposely/internal/storage"
	"github.com/ignatzorin/proposely/internal/store"
	"github.com/ignatzorin/proposely/internal/validation"
)

// DraftKey задаёт ключ черновика формы после сетевого сбоя генерации.
const DraftKey = "draft_proposal"

// ProposalService связывает форму генерации, бэкенд и локальный стор.
type ProposalService struct {
	api     ProposalAPI
	store   *store.Store
	session SessionStore
	kv      storage.KeyValueStore
	pdfs    *storage.PDFStorage
}

// NewProposalService создаёт сервис предложений. pdfs может быть nil, если скачивание не нужно.
func NewProposalService(api ProposalAPI, st *store.Store, sess SessionStore, kv storage.KeyValueStore, pdfs *storage.PDFStorage) *ProposalService {
	return &ProposalService{
		api:     api,
		store:   st,
		session: sess,
		kv:      kv,
		pdfs:    pdfs,
	}
}

// Generate проверяет форму, вызывает генерацию и добавляет результат в стор.
// Флаг загрузки снимается при любом исходе. Если сервер так и не ответил,
// форма сохраняется как черновик.
func (s *ProposalService) Generate(ctx context.Context, req models.GenerateProposalRequest) (models.Proposal, error) {
	if err := validation.ValidateProposalForm(req); err != nil {
		return models.Proposal{}, err
	}

	s.store.SetLoading(true)
	s.store.ClearError()
	defer s.store.SetLoading(false)

	resp, err := s.api.GenerateProposal(ctx, req)
	if err != nil {
		s.store.SetError(apperror.Message(err))
		clearOnUnauthorized(ctx, s.session, err)
		if apperror.IsNetworkClass(err) {
			if draftErr := s.saveDraft(ctx, req, err); draftErr != nil {
				logger.WithFields(logrus.Fields{"error": draftErr}).Warn("proposal service: не удалось сохранить черновик")
			}
		}
		return models.Proposal{}, err
	}

	p, err := s.store.AddProposal(ctx, req, *resp)
	if err != nil {
		// Предложение уже в памяти; ошибка касается только сохранения.
		return p, err
	}

	if err := s.DiscardDraft(ctx); err != nil {
		logger.WithFields(logrus.Fields{"error": err}).Debug("proposal service: не удалось удалить черновик")
	}

	logger.WithFields(logrus.Fields{
		"proposal_id": p.ID,
		"client_name": p.ClientName,
		"total":       p.Total,
	}).Info("proposal service: предложение сгенерировано")
	return p, nil
}

// Preview генерирует предложение без PDF и без записи в стор.
func (s *ProposalService) Preview(ctx context.Context, req models.GenerateProposalRequest) (*models.GenerateProposalResponse, error) {
	if err := validation.ValidateProposalForm(req); err != nil {
		return nil, err
	}
	resp, err := s.api.PreviewProposal(ctx, req)
	if err != nil {
		clearOnUnauthorized(ctx, s.session, err)
		return nil, err
	}
	return resp, nil
}

// SaveRemote сохраняет метаданные предложения на сервере.
func (s *ProposalService) SaveRemote(ctx context.Context, req models.GenerateProposalRequest, generatePDF bool) (*models.SavedProposal, error) {
	if err := validation.ValidateProposalForm(req); err != nil {
		return nil, err
	}
	saved, err := s.api.SaveProposal(ctx, req, generatePDF)
	if err != nil {
		clearOnUnauthorized(ctx, s.session, err)
		return nil, err
	}
	return saved, nil
}

// ListRemote возвращает предложения, сохранённые на сервере.
func (s *ProposalService) ListRemote(ctx context.Context) ([]models.SavedProposal, error) {
	list, err := s.api.ListProposals(ctx)
	if err != nil {
		clearOnUnauthorized(ctx, s.session, err)
		return nil, err
	}
	return list, nil
}

// DeleteRemote удаляет предложение на сервере.
func (s *ProposalService) DeleteRemote(ctx context.Context, id string) error {
	if err := s.api.DeleteProposal(ctx, id); err != nil {
		clearOnUnauthorized(ctx, s.session, err)
		return err
	}
	return nil
}

// DownloadPDF скачивает PDF локального предложения и возвращает путь к файлу.
// Без ссылки на PDF документ запрашивается у бэкенда по исходной форме.
func (s *ProposalService) DownloadPDF(ctx context.Context, id string) (string, int64, error) {
	if s.pdfs == nil {
		return "", 0, apperror.New(apperror.ErrCodeInternal, "каталог загрузок не настроен")
	}

	p, ok := s.store.GetByID(id)
	if !ok {
		return "", 0, apperror.ErrProposalNotFound
	}

	var (
		resp *http.Response
		err  error
	)
	if p.ProposalPDFDownloadURL != "" {
		resp, err = s.api.DownloadPDF(ctx, p.ProposalPDFDownloadURL)
	} else {
		resp, err = s.api.GenerateProposalPDF(ctx, requestFromProposal(p))
	}
	if err != nil {
		clearOnUnauthorized(ctx, s.session, err)
		return "", 0, err
	}
	defer resp.Body.Close()

	name := p.ProposalPDFFilename
	if name == "" {
		name = p.ID + ".pdf"
	}

	path, size, err := s.pdfs.Save(ctx, name, resp.Body)
	if errors.Is(err, storage.ErrNotPDF) {
		return "", 0, apperror.Malformed(err, "сервер вернул файл, который не является PDF")
	}
	if err != nil {
		return "", 0, apperror.Wrap(err, apperror.ErrCodeStorage, "не удалось сохранить PDF")
	}
	return path, size, nil
}

// Draft возвращает сохранённый черновик или nil.
func (s *ProposalService) Draft(ctx context.Context) (*models.ProposalDraft, error) {
	data, err := s.kv.Get(ctx, DraftKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("proposal service: чтение черновика: %w", err)
	}

	var draft models.ProposalDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, nil
	}
	return &draft, nil
}

// DiscardDraft удаляет черновик.
func (s *ProposalService) DiscardDraft(ctx context.Context) error {
	return s.kv.Delete(ctx, DraftKey)
}

func (s *ProposalService) saveDraft(ctx context.Context, req models.GenerateProposalRequest, cause error) error {
	data, err := json.Marshal(models.ProposalDraft{
		Request: req,
		Error:   apperror.Message(cause),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, DraftKey, data)
}

func requestFromProposal(p models.Proposal) models.GenerateProposalRequest {
	return models.GenerateProposalRequest{
		ClientName:  p.ClientName,
		ProjectType: p.ProjectType,
		CompanyName: p.CompanyName,
	}
}
