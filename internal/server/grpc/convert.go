package grpc

import (
	pb "github.com/dmitrijs2005/devlogs/internal/proto"
	"github.com/dmitrijs2005/devlogs/internal/server/models"
)

func requestToPB(r *models.UploadRequest) *pb.UploadRequest {
	out := &pb.UploadRequest{
		ID:          r.ID,
		WorkspaceID: r.WorkspaceID,
		DeviceSN:    r.DeviceSN,
		RequestedBy: r.RequestedBy,
		Description: r.Description,
		Status:      string(r.Status()),
		Files:       make([]*pb.FileEntry, 0, len(r.Files)),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	for _, f := range r.Files {
		out.Files = append(out.Files, &pb.FileEntry{
			FileID:          f.FileID,
			Domain:          f.Domain,
			BootIndex:       f.BootIndex,
			StartTime:       f.StartTime,
			EndTime:         f.EndTime,
			Status:          string(f.Status),
			Progress:        f.Progress,
			ObjectKey:       f.ObjectKey,
			Size:            f.Size,
			CancelRequested: f.CancelRequested,
			FailReason:      f.FailReason,
			UpdatedAt:       f.UpdatedAt,
		})
	}
	return out
}

func domainsToPB(ds []models.DomainDescriptor) []*pb.DomainDescriptor {
	out := make([]*pb.DomainDescriptor, 0, len(ds))
	for _, d := range ds {
		desc := &pb.DomainDescriptor{DeviceSN: d.DeviceSN, Domain: d.Domain, Files: make([]*pb.LogFile, 0, len(d.Files))}
		for _, f := range d.Files {
			desc.Files = append(desc.Files, &pb.LogFile{BootIndex: f.BootIndex, StartTime: f.StartTime, EndTime: f.EndTime, Size: f.Size})
		}
		out = append(out, desc)
	}
	return out
}

func selectionFromPB(req *pb.StartUploadRequest) models.FileSelection {
	sel := models.FileSelection{
		WorkspaceID: req.WorkspaceID,
		Description: req.Description,
		Files:       make([]models.FileSpec, 0, len(req.Files)),
	}
	for _, f := range req.Files {
		if f == nil {
			continue
		}
		sel.Files = append(sel.Files, models.FileSpec{
			FileID:    f.FileID,
			Domain:    f.Domain,
			BootIndex: f.BootIndex,
			StartTime: f.StartTime,
			EndTime:   f.EndTime,
		})
	}
	return sel
}

func updateFromPB(req *pb.CancelUploadRequest) models.UpdateRequest {
	upd := models.UpdateRequest{RequestID: req.RequestID, Domains: req.Domains}
	for _, id := range req.FileIDs {
		upd.Targets = append(upd.Targets, models.FileTarget{FileID: id, Action: models.TargetCancel})
	}
	return upd
}
